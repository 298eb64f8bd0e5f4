package deduction

import (
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST DTOs
// ========================================

type CancelDeductionRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelDeductionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApplyPayrollRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *ApplyPayrollRequest) Validate() error {
	return validatePeriod(r.Month, r.Year)
}

// ReportFilter selects a payroll period and optionally one employee.
type ReportFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
}

func (f *ReportFilter) Validate() error {
	var errs validator.ValidationErrors
	if err := validatePeriod(f.Month, f.Year); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePeriod(month, year int) error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if !validator.IsValidYear(year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 9999",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type DeductionResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name,omitempty"`
	SourceAttendanceID string          `json:"source_attendance_id"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	Amount             decimal.Decimal `json:"amount"`
	MinutesDeducted    int             `json:"minutes_deducted"`
	EffectiveMonth     int             `json:"effective_month"`
	EffectiveYear      int             `json:"effective_year"`
	AppliedToPayroll   bool            `json:"applied_to_payroll"`
	AppliedAt          *string         `json:"applied_at,omitempty"`
	ApprovedBy         *string         `json:"approved_by,omitempty"`
	ApprovedAt         *string         `json:"approved_at,omitempty"`
	CancelledBy        *string         `json:"cancelled_by,omitempty"`
	CancelledAt        *string         `json:"cancelled_at,omitempty"`
	CancelReason       *string         `json:"cancel_reason,omitempty"`
	Breakdown          Breakdown       `json:"breakdown"`
	Notes              string          `json:"notes"`
	CreatedAt          string          `json:"created_at"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func NewDeductionResponse(d Deduction) DeductionResponse {
	return DeductionResponse{
		ID:                 d.ID,
		EmployeeID:         d.EmployeeID,
		SourceAttendanceID: d.SourceAttendanceID,
		Type:               string(d.Type),
		Status:             string(d.Status),
		Amount:             d.Amount,
		MinutesDeducted:    d.MinutesDeducted,
		EffectiveMonth:     d.EffectiveMonth,
		EffectiveYear:      d.EffectiveYear,
		AppliedToPayroll:   d.AppliedToPayroll,
		AppliedAt:          formatTime(d.AppliedAt),
		ApprovedBy:         d.ApprovedBy,
		ApprovedAt:         formatTime(d.ApprovedAt),
		CancelledBy:        d.CancelledBy,
		CancelledAt:        formatTime(d.CancelledAt),
		CancelReason:       d.CancelReason,
		Breakdown:          d.Breakdown,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt.Format(time.RFC3339),
	}
}

type ApplyPayrollResponse struct {
	Month   int   `json:"month"`
	Year    int   `json:"year"`
	Applied int64 `json:"applied"`
}

type GraceBalanceResponse struct {
	TotalLateMinutes     int             `json:"total_late_minutes"`
	GraceMinutesUsed     int             `json:"grace_minutes_used"`
	RemainingGrace       int             `json:"remaining_grace"`
	DeductedMinutes      int             `json:"deducted_minutes"`
	TotalDeductionAmount decimal.Decimal `json:"total_deduction_amount"`
	LateCount            int             `json:"late_count"`
}

func NewGraceBalanceResponse(b GraceBalance, monthlyGraceMinutes int) GraceBalanceResponse {
	return GraceBalanceResponse{
		TotalLateMinutes:     b.TotalLateMinutes,
		GraceMinutesUsed:     b.GraceMinutesUsed,
		RemainingGrace:       b.RemainingGrace(monthlyGraceMinutes),
		DeductedMinutes:      b.DeductedMinutes,
		TotalDeductionAmount: b.TotalDeductionAmount,
		LateCount:            b.LateCount,
	}
}

type EmployeeReport struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Balance      GraceBalanceResponse `json:"balance"`
	// ActiveAmount sums pending and approved deductions of every type.
	ActiveAmount decimal.Decimal     `json:"active_amount"`
	Deductions   []DeductionResponse `json:"deductions"`
}

type MonthlyReportResponse struct {
	Month     int              `json:"month"`
	Year      int              `json:"year"`
	Employees []EmployeeReport `json:"employees"`
}

type StatusStats struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type OffenderStats struct {
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name"`
	LateCount        int             `json:"late_count"`
	TotalLateMinutes int             `json:"total_late_minutes"`
	Amount           decimal.Decimal `json:"amount"`
}

type CompanyStatsResponse struct {
	Month                int                    `json:"month"`
	Year                 int                    `json:"year"`
	EmployeesLate        int                    `json:"employees_late"`
	TotalLateEvents      int                    `json:"total_late_events"`
	TotalLateMinutes     int                    `json:"total_late_minutes"`
	TotalGraceUsed       int                    `json:"total_grace_used"`
	TotalDeductedMinutes int                    `json:"total_deducted_minutes"`
	ActiveAmount         decimal.Decimal        `json:"active_amount"`
	ByStatus             map[Status]StatusStats `json:"by_status"`
	ByType               map[Type]StatusStats   `json:"by_type"`
	TopOffenders         []OffenderStats        `json:"top_offenders"`
}
