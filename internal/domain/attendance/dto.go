package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// DeductionSummary describes the deduction an event produced, if any.
type DeductionSummary struct {
	DeductionID     *string         `json:"deduction_id,omitempty"`
	Type            string          `json:"type"`
	SkipReason      string          `json:"skip_reason,omitempty"`
	DeductMinutes   int             `json:"deduct_minutes"`
	UseGraceMinutes int             `json:"use_grace_minutes"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	IsCapped        bool            `json:"is_capped"`
	TotalDeduction  decimal.Decimal `json:"total_deduction"`
	Status          *string         `json:"status,omitempty"`
	Notes           string          `json:"notes"`
}

type CheckInResult struct {
	Attendance  Attendance
	UsedDefault bool
	Deduction   *DeductionSummary
}

type CheckOutResult struct {
	Attendance Attendance
	Deduction  *DeductionSummary
}

// CheckInRequest is the HTTP body for check-in and check-out. Instant defaults to now.
type CheckInRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Instant    *string `json:"instant,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil && !validator.IsValidUUID(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if r.Instant != nil {
		if _, ok := validator.IsValidDateTime(*r.Instant); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "instant",
				Message: "instant must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedInstant returns the requested instant or fallback when none was given.
func (r *CheckInRequest) ParsedInstant(fallback time.Time) time.Time {
	if r.Instant == nil {
		return fallback
	}
	t, ok := validator.IsValidDateTime(*r.Instant)
	if !ok {
		return fallback
	}
	return t
}

type AttendanceResponse struct {
	ID                string            `json:"id,omitempty"`
	EmployeeID        string            `json:"employee_id"`
	Date              string            `json:"date"`
	ShiftID           *string           `json:"shift_id,omitempty"`
	CheckIn           *string           `json:"check_in,omitempty"`
	CheckOut          *string           `json:"check_out,omitempty"`
	ScheduledStart    *string           `json:"scheduled_start,omitempty"`
	ScheduledEnd      *string           `json:"scheduled_end,omitempty"`
	Status            string            `json:"status"`
	LateMinutes       int               `json:"late_minutes"`
	EarlyLeaveMinutes int               `json:"early_leave_minutes"`
	WorkedHours       float64           `json:"worked_hours"`
	OvertimeHours     float64           `json:"overtime_hours"`
	UsedDefaultShift  *bool             `json:"used_default_shift,omitempty"`
	Deduction         *DeductionSummary `json:"deduction,omitempty"`
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:                a.ID,
		EmployeeID:        a.EmployeeID,
		Date:              a.Date.Format("2006-01-02"),
		ShiftID:           a.ShiftID,
		CheckIn:           formatInstant(a.CheckIn),
		CheckOut:          formatInstant(a.CheckOut),
		ScheduledStart:    formatInstant(a.ScheduledStart),
		ScheduledEnd:      formatInstant(a.ScheduledEnd),
		Status:            string(a.Status),
		LateMinutes:       a.LateMinutes,
		EarlyLeaveMinutes: a.EarlyLeaveMinutes,
		WorkedHours:       a.WorkedHours,
		OvertimeHours:     a.OvertimeHours,
	}
}
