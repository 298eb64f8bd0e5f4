package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	CreateShift(w http.ResponseWriter, r *http.Request)
	GetShift(w http.ResponseWriter, r *http.Request)
	AssignShift(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// CreateShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateShift(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req schedule.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.CreateShift(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift created successfully", result)
}

// GetShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetShift(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid shift id", nil)
		return
	}

	result, err := h.scheduleService.GetShift(r.Context(), claims.CompanyID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// AssignShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) AssignShift(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req schedule.AssignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.AssignShift(r.Context(), claims.CompanyID, req)
	if err != nil {
		slog.Error("Assign shift service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift assigned successfully", result)
}
