package deduction

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
)

// Ledger owns reads and writes of monthly grace balances.
// Callers must hold the employee's attendance lock and run inside a transaction
// so that the calculator's read and the ledger write are one unit.
type Ledger struct {
	repo deduction.GraceBalanceRepository
}

func NewLedger(repo deduction.GraceBalanceRepository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) GetOrCreate(ctx context.Context, companyID string, employeeID string, month, year int) (deduction.GraceBalance, error) {
	balance, err := l.repo.GetOrCreate(ctx, companyID, employeeID, month, year)
	if err != nil {
		return deduction.GraceBalance{}, fmt.Errorf("failed to get grace balance: %w", err)
	}
	return balance, nil
}

// Apply adds entry to balance and persists it with a version check.
func (l *Ledger) Apply(ctx context.Context, balance deduction.GraceBalance, entry deduction.LedgerEntry) (deduction.GraceBalance, error) {
	updated, err := l.repo.Update(ctx, balance.Apply(entry))
	if err != nil {
		return deduction.GraceBalance{}, fmt.Errorf("failed to apply lateness to grace balance: %w", err)
	}
	return updated, nil
}

// Reverse removes entry from balance and persists it with a version check.
func (l *Ledger) Reverse(ctx context.Context, balance deduction.GraceBalance, entry deduction.LedgerEntry) (deduction.GraceBalance, error) {
	reversed, err := balance.Reverse(entry)
	if err != nil {
		return deduction.GraceBalance{}, err
	}
	updated, err := l.repo.Update(ctx, reversed)
	if err != nil {
		return deduction.GraceBalance{}, fmt.Errorf("failed to reverse grace balance: %w", err)
	}
	return updated, nil
}
