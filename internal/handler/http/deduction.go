package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type DeductionHandler interface {
	Report(w http.ResponseWriter, r *http.Request)
	ExportReport(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	PayrollApplied(w http.ResponseWriter, r *http.Request)
}

type deductionHandlerImpl struct {
	deductionService deduction.DeductionService
}

func NewDeductionHandler(deductionService deduction.DeductionService) DeductionHandler {
	return &deductionHandlerImpl{deductionService: deductionService}
}

// parseReportFilter reads ?month=&year=&employee_id= from the query string.
func parseReportFilter(r *http.Request) (deduction.ReportFilter, error) {
	query := r.URL.Query()
	var errs validator.ValidationErrors

	month, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
	}
	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
	}
	if len(errs) > 0 {
		return deduction.ReportFilter{}, errs
	}

	filter := deduction.ReportFilter{Month: month, Year: year}
	if id := query.Get("employee_id"); id != "" {
		filter.EmployeeID = &id
	}
	if err := filter.Validate(); err != nil {
		return deduction.ReportFilter{}, err
	}
	return filter, nil
}

// Report implements DeductionHandler.
func (h *deductionHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.deductionService.MonthlyReport(r.Context(), claims.CompanyID, filter)
	if err != nil {
		slog.Error("Monthly deduction report failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, report)
}

// ExportReport implements DeductionHandler.
func (h *deductionHandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.deductionService.ExportMonthlyReport(r.Context(), claims.CompanyID, filter, &buf); err != nil {
		slog.Error("Deduction report export failed", "error", err)
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("deductions-%d-%02d.xlsx", filter.Year, filter.Month)
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write export", "error", err)
	}
}

// Stats implements DeductionHandler.
func (h *deductionHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	stats, err := h.deductionService.CompanyStats(r.Context(), claims.CompanyID, filter)
	if err != nil {
		slog.Error("Deduction stats failed", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

// Approve implements DeductionHandler.
func (h *deductionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	deductionID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(deductionID) {
		response.BadRequest(w, "Invalid deduction id", nil)
		return
	}

	resp, err := h.deductionService.Approve(r.Context(), claims.CompanyID, deductionID, claims.actor())
	if err != nil {
		slog.Error("Approve deduction failed", "deduction_id", deductionID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deduction approved", resp)
}

// Cancel implements DeductionHandler.
func (h *deductionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	deductionID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(deductionID) {
		response.BadRequest(w, "Invalid deduction id", nil)
		return
	}

	var req deduction.CancelDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.deductionService.Cancel(r.Context(), claims.CompanyID, deductionID, claims.actor(), req)
	if err != nil {
		slog.Error("Cancel deduction failed", "deduction_id", deductionID, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Deduction cancelled", resp)
}

// PayrollApplied implements DeductionHandler.
func (h *deductionHandlerImpl) PayrollApplied(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req deduction.ApplyPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.deductionService.MarkAppliedToPayroll(r.Context(), claims.CompanyID, req)
	if err != nil {
		slog.Error("Mark deductions applied failed", "error", err)
		response.HandleError(w, err)
		return
	}
	slog.Info("Deductions applied to payroll", "company_id", claims.CompanyID, "applied", resp.Applied)
	response.Success(w, resp)
}
