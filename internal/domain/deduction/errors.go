package deduction

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDeductionNotFound      = errors.New("deduction not found")
	ErrBalanceNotFound        = errors.New("grace balance not found")
	ErrAlreadyApplied         = errors.New("deduction already applied to payroll")
	ErrDeductionNotPending    = errors.New("only pending deductions can be approved")
	ErrConcurrentModification = errors.New("grace balance was modified concurrently")
	ErrLedgerUnderflow        = errors.New("reversal would make grace balance negative")

	// Calculator failures. These reject the operation instead of yielding a zero deduction.
	ErrBaseSalaryRequired = errors.New("employee base salary is required for this deduction policy")
	ErrInvalidRate        = errors.New("deduction rate must not be negative")
	ErrInvalidMinutes     = errors.New("minutes must not be negative")
)

// AlreadyAppliedError is returned when cancelling a deduction that payroll already consumed.
type AlreadyAppliedError struct {
	DeductionID string
	AppliedAt   *time.Time
}

func (e *AlreadyAppliedError) Error() string {
	if e.AppliedAt != nil {
		return fmt.Sprintf("deduction %s was applied to payroll at %s", e.DeductionID, e.AppliedAt.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("deduction %s was applied to payroll", e.DeductionID)
}

func (e *AlreadyAppliedError) Unwrap() error {
	return ErrAlreadyApplied
}
