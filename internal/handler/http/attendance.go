package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetDaily(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

// decodeEvent reads the optional check-in/out body and resolves the employee and instant.
// Only callers allowed to act for others may set an explicit instant.
func (h *attendanceHandlerImpl) decodeEvent(r *http.Request) (requestClaims, string, time.Time, error) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		return requestClaims{}, "", time.Time{}, err
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return requestClaims{}, "", time.Time{}, validator.ValidationErrors{
			{Field: "body", Message: "invalid request format"},
		}
	}
	if err := req.Validate(); err != nil {
		return requestClaims{}, "", time.Time{}, err
	}

	employeeID, err := claims.targetEmployee(req.EmployeeID)
	if err != nil {
		return requestClaims{}, "", time.Time{}, err
	}

	instant := h.now()
	if req.Instant != nil {
		if !user.HasPermission(claims.Role, user.PermissionAttendanceViewAll) {
			return requestClaims{}, "", time.Time{}, user.ErrInsufficientPermissions
		}
		instant = req.ParsedInstant(instant)
	}
	return claims, employeeID, instant, nil
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims, employeeID, instant, err := h.decodeEvent(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.OnCheckIn(r.Context(), claims.CompanyID, employeeID, instant)
	if err != nil {
		slog.Error("Check-in failed", "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	resp := attendance.NewAttendanceResponse(result.Attendance)
	resp.UsedDefaultShift = &result.UsedDefault
	resp.Deduction = result.Deduction
	response.Created(w, "Check in successful", resp)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	claims, employeeID, instant, err := h.decodeEvent(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.OnCheckOut(r.Context(), claims.CompanyID, employeeID, instant)
	if err != nil {
		slog.Error("Check-out failed", "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	resp := attendance.NewAttendanceResponse(result.Attendance)
	resp.Deduction = result.Deduction
	response.SuccessWithMessage(w, "Check out successful", resp)
}

// GetDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDaily(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	query := r.URL.Query()
	date, ok := validator.IsValidDate(query.Get("date"))
	if !ok {
		response.HandleError(w, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		})
		return
	}

	var requested *string
	if id := query.Get("employee_id"); id != "" {
		requested = &id
	}
	employeeID, err := claims.targetEmployee(requested)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.GetDailyAttendance(r.Context(), claims.CompanyID, employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.NewAttendanceResponse(record))
}
