package deduction

import (
	"context"
	"time"
)

// GraceBalanceRepository persists monthly grace balances.
type GraceBalanceRepository interface {
	// GetOrCreate returns the balance for the period, creating a zeroed one if absent.
	// Calling it repeatedly never creates duplicates.
	GetOrCreate(ctx context.Context, companyID string, employeeID string, month, year int) (GraceBalance, error)

	// Get returns ErrBalanceNotFound when the period has no balance yet.
	Get(ctx context.Context, employeeID string, month, year int) (GraceBalance, error)

	// Update writes the counters only if the stored version still equals balance.Version,
	// otherwise it returns ErrConcurrentModification. The returned balance carries the new version.
	Update(ctx context.Context, balance GraceBalance) (GraceBalance, error)

	ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]GraceBalance, error)
}

type DeductionRepository interface {
	Create(ctx context.Context, deduction Deduction) (Deduction, error)
	GetByID(ctx context.Context, id string, companyID string) (Deduction, error)

	// Update persists status, audit and payroll fields.
	Update(ctx context.Context, deduction Deduction) error

	ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, month, year int) ([]Deduction, error)
	ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]Deduction, error)

	// MarkAppliedToPayroll flags every approved, unapplied deduction of the period.
	MarkAppliedToPayroll(ctx context.Context, companyID string, month, year int, appliedAt time.Time) (int64, error)
}
