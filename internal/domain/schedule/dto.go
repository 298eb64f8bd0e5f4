package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateShiftRequest struct {
	Name                 string `json:"name"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	BreakDurationMinutes int    `json:"break_duration_minutes"`
	IsNextDayCheckout    bool   `json:"is_next_day_checkout"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidClock(r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be in HH:MM format",
		})
	}
	if !validator.IsValidClock(r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be in HH:MM format",
		})
	}
	if r.BreakDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_duration_minutes",
			Message: "break_duration_minutes must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AssignShiftRequest assigns a shift to every date in [start_date, end_date].
// end_date defaults to start_date.
type AssignShiftRequest struct {
	EmployeeID string  `json:"employee_id"`
	ShiftID    string  `json:"shift_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date,omitempty"`
}

// maxAssignmentDays bounds one assignment request.
const maxAssignmentDays = 366

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if !validator.IsValidUUID(r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_id",
			Message: "shift_id must be a valid UUID",
		})
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if r.EndDate != nil {
		end, endOK := validator.IsValidDate(*r.EndDate)
		switch {
		case !endOK:
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		case ok && end.Before(start):
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		case ok && end.Sub(start) >= maxAssignmentDays*24*time.Hour:
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "an assignment may cover at most 366 days",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the requested calendar dates as midnights in loc. Call Validate first.
func (r *AssignShiftRequest) Dates(loc *time.Location) []time.Time {
	start, _ := validator.IsValidDate(r.StartDate)
	end := start
	if r.EndDate != nil {
		end, _ = validator.IsValidDate(*r.EndDate)
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc))
	}
	return dates
}

// ========================================
// RESPONSE DTOs
// ========================================

type ShiftResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	BreakDurationMinutes int    `json:"break_duration_minutes"`
	IsNextDayCheckout    bool   `json:"is_next_day_checkout"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		StartTime:            s.Start.String(),
		EndTime:              s.End.String(),
		BreakDurationMinutes: s.BreakDurationMinutes,
		IsNextDayCheckout:    s.IsOvernight(),
	}
}

type AssignmentResponse struct {
	EmployeeID string   `json:"employee_id"`
	ShiftID    string   `json:"shift_id"`
	Dates      []string `json:"dates"`
}
