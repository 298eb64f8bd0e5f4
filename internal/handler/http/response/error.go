package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User / claims errors
	case errors.Is(err, user.ErrCompanyIDRequired):
		Unauthorized(w, "Company claim is required")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		BadRequest(w, "Employee ID is required", nil)
	case errors.Is(err, user.ErrInsufficientPermissions), errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Company domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrMalformedPolicy):
		Conflict(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrInvalidSalaryRate):
		BadRequest(w, err.Error(), nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, schedule.ErrShiftAlreadyAssigned):
		Conflict(w, "Shift already assigned for this date")
	case errors.Is(err, schedule.ErrInvalidShiftConfiguration):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrCheckOutBeforeIn):
		BadRequest(w, "Check-out is before check-in", nil)

	// Deduction domain errors
	case errors.Is(err, deduction.ErrDeductionNotFound):
		NotFound(w, "Deduction not found")
	case errors.Is(err, deduction.ErrAlreadyApplied):
		Conflict(w, err.Error())
	case errors.Is(err, deduction.ErrDeductionNotPending):
		Conflict(w, err.Error())
	case errors.Is(err, deduction.ErrConcurrentModification):
		Conflict(w, "Grace balance was modified concurrently, retry the request")
	case errors.Is(err, deduction.ErrBaseSalaryRequired), errors.Is(err, deduction.ErrInvalidRate):
		Conflict(w, err.Error())

	// Infrastructure
	case errors.Is(err, lock.ErrLockNotObtained):
		ServiceUnavailable(w, "Another attendance event for this employee is in progress")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
