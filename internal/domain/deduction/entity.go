package deduction

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeLate       Type = "LATE"
	TypeEarlyLeave Type = "EARLY_LEAVE"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
)

// SkipReason explains why no deduction was computed. Empty means the calculation ran.
type SkipReason string

const (
	SkipNone                  SkipReason = ""
	SkipDisabledGlobally      SkipReason = "DISABLED_GLOBALLY"
	SkipEmployeeExcluded      SkipReason = "EMPLOYEE_EXCLUDED"
	SkipEarlyCheckoutDisabled SkipReason = "EARLY_CHECKOUT_DISABLED"
	SkipWithinEarlyThreshold  SkipReason = "WITHIN_EARLY_THRESHOLD"
)

type CalculationMode string

const (
	ModePerMinute CalculationMode = "PER_MINUTE"
	ModeTiered    CalculationMode = "TIERED"
)

// Breakdown records every intermediate value of a deduction calculation.
// It is persisted with the deduction record and is the only source used to
// reverse a deduction.
type Breakdown struct {
	Type                 Type             `json:"type"`
	SkipReason           SkipReason       `json:"skip_reason,omitempty"`
	LateMinutes          int              `json:"late_minutes"`
	EarlyLeaveMinutes    int              `json:"early_leave_minutes,omitempty"`
	EarlyLeaveThreshold  int              `json:"early_leave_threshold,omitempty"`
	DailyThreshold       int              `json:"daily_threshold"`
	GraceEligibleMinutes int              `json:"grace_eligible_minutes"`
	ImmediateDeduct      int              `json:"immediate_deduct"`
	RemainingGrace       int              `json:"remaining_grace"`
	UseGraceMinutes      int              `json:"use_grace_minutes"`
	AdditionalDeduct     int              `json:"additional_deduct"`
	DeductMinutes        int              `json:"deduct_minutes"`
	PriorViolations      int              `json:"prior_violations"`
	Multiplier           decimal.Decimal  `json:"multiplier"`
	BaseRate             decimal.Decimal  `json:"base_rate"`
	EffectiveRate        decimal.Decimal  `json:"effective_rate"`
	Mode                 CalculationMode  `json:"mode"`
	TierApplied          *company.Tier    `json:"tier_applied,omitempty"`
	DailySalary          decimal.Decimal  `json:"daily_salary"`
	OriginalAmount       decimal.Decimal  `json:"original_amount"`
	MaxDeductionAmount   *decimal.Decimal `json:"max_deduction_amount,omitempty"`
	IsCapped             bool             `json:"is_capped"`
	TotalDeduction       decimal.Decimal  `json:"total_deduction"`
}

func (b Breakdown) Skipped() bool {
	return b.SkipReason != SkipNone
}

// Describe renders the breakdown as a human-readable justification.
func (b Breakdown) Describe() string {
	if b.Skipped() {
		return fmt.Sprintf("%s deduction skipped: %s", b.Type, b.SkipReason)
	}

	var sb strings.Builder
	switch b.Type {
	case TypeLate:
		fmt.Fprintf(&sb, "Late %d min (daily threshold %d): %d immediately deductible, %d grace-eligible; ",
			b.LateMinutes, b.DailyThreshold, b.ImmediateDeduct, b.GraceEligibleMinutes)
		fmt.Fprintf(&sb, "grace absorbed %d of %d remaining, %d over grace; ",
			b.UseGraceMinutes, b.RemainingGrace, b.AdditionalDeduct)
		fmt.Fprintf(&sb, "%d min deducted at %s x%s (violation #%d)",
			b.DeductMinutes, b.BaseRate.String(), b.Multiplier.String(), b.PriorViolations+1)
	case TypeEarlyLeave:
		fmt.Fprintf(&sb, "Left %d min early (threshold %d): %d min deducted at %s",
			b.EarlyLeaveMinutes, b.EarlyLeaveThreshold, b.DeductMinutes, b.BaseRate.String())
	}
	if b.TierApplied != nil {
		fmt.Fprintf(&sb, "; tier >= %d min applied: %s day(s) x %s",
			b.TierApplied.MinMinutes, b.TierApplied.DeductionDays.String(), b.DailySalary.StringFixed(2))
	}
	if b.IsCapped {
		fmt.Fprintf(&sb, "; capped from %s to %s", b.OriginalAmount.StringFixed(2), b.TotalDeduction.StringFixed(2))
	}
	fmt.Fprintf(&sb, " = %s", b.TotalDeduction.StringFixed(2))
	return sb.String()
}

// GraceBalance is the per-employee monthly lateness ledger.
// Version increments on every persisted change and guards concurrent writers.
type GraceBalance struct {
	ID                   string
	CompanyID            string
	EmployeeID           string
	Month                int
	Year                 int
	TotalLateMinutes     int
	GraceMinutesUsed     int
	DeductedMinutes      int
	TotalDeductionAmount decimal.Decimal
	LateCount            int
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RemainingGrace may be negative if the monthly allowance was lowered mid-month.
func (b GraceBalance) RemainingGrace(monthlyGraceMinutes int) int {
	return monthlyGraceMinutes - b.GraceMinutesUsed
}

// LedgerEntry is the five-counter delta one lateness event contributes to a GraceBalance.
type LedgerEntry struct {
	LateMinutes     int
	GraceMinutes    int
	DeductedMinutes int
	Amount          decimal.Decimal
	Violations      int
}

// EntryFromBreakdown derives the ledger delta from a stored breakdown.
func EntryFromBreakdown(b Breakdown) LedgerEntry {
	return LedgerEntry{
		LateMinutes:     b.LateMinutes,
		GraceMinutes:    b.UseGraceMinutes,
		DeductedMinutes: b.DeductMinutes,
		Amount:          b.TotalDeduction,
		Violations:      1,
	}
}

// Apply returns the balance with entry added.
func (b GraceBalance) Apply(e LedgerEntry) GraceBalance {
	b.TotalLateMinutes += e.LateMinutes
	b.GraceMinutesUsed += e.GraceMinutes
	b.DeductedMinutes += e.DeductedMinutes
	b.TotalDeductionAmount = b.TotalDeductionAmount.Add(e.Amount)
	b.LateCount += e.Violations
	return b
}

// Reverse returns the balance with entry removed, the exact inverse of Apply.
func (b GraceBalance) Reverse(e LedgerEntry) (GraceBalance, error) {
	out := b
	out.TotalLateMinutes -= e.LateMinutes
	out.GraceMinutesUsed -= e.GraceMinutes
	out.DeductedMinutes -= e.DeductedMinutes
	out.TotalDeductionAmount = out.TotalDeductionAmount.Sub(e.Amount)
	out.LateCount -= e.Violations

	if out.TotalLateMinutes < 0 || out.GraceMinutesUsed < 0 || out.DeductedMinutes < 0 ||
		out.TotalDeductionAmount.IsNegative() || out.LateCount < 0 {
		return b, fmt.Errorf("%w: balance %s %02d/%d", ErrLedgerUnderflow, b.EmployeeID, b.Month, b.Year)
	}
	return out, nil
}

// Deduction is one applied penalty linked to the attendance event that caused it.
type Deduction struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	SourceAttendanceID string
	Type               Type
	Amount             decimal.Decimal
	MinutesDeducted    int
	Breakdown          Breakdown
	Status             Status
	EffectiveMonth     int
	EffectiveYear      int
	AppliedToPayroll   bool
	AppliedAt          *time.Time
	ApprovedBy         *string
	ApprovedAt         *time.Time
	CancelledBy        *string
	CancelledAt        *time.Time
	CancelReason       *string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AppendNote adds an audit line to the deduction notes.
func (d *Deduction) AppendNote(at time.Time, note string) {
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), note)
	if d.Notes == "" {
		d.Notes = line
		return
	}
	d.Notes += "\n" + line
}
