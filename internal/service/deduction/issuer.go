package deduction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/lock"
)

var errSkippedBreakdown = errors.New("cannot issue a skipped deduction")

// Issuer persists deduction records and keeps the grace ledger consistent with them.
type Issuer struct {
	tx            database.Transactor
	locker        lock.Locker
	deductionRepo deduction.DeductionRepository
	ledger        *Ledger
	now           func() time.Time
}

func NewIssuer(
	tx database.Transactor,
	locker lock.Locker,
	deductionRepo deduction.DeductionRepository,
	ledger *Ledger,
) *Issuer {
	return &Issuer{
		tx:            tx,
		locker:        locker,
		deductionRepo: deductionRepo,
		ledger:        ledger,
		now:           time.Now,
	}
}

type IssueInput struct {
	CompanyID     string
	EmployeeID    string
	AttendanceID  string
	Breakdown     deduction.Breakdown
	Month         int
	Year          int
	RequireReview bool
}

// Issue creates the deduction record for a computed breakdown. It joins the caller's
// transaction; the caller has already applied the breakdown to the ledger.
func (i *Issuer) Issue(ctx context.Context, in IssueInput) (deduction.Deduction, error) {
	if in.Breakdown.Skipped() {
		return deduction.Deduction{}, fmt.Errorf("%w: %s", errSkippedBreakdown, in.Breakdown.SkipReason)
	}

	now := i.now().UTC()
	d := deduction.Deduction{
		CompanyID:          in.CompanyID,
		EmployeeID:         in.EmployeeID,
		SourceAttendanceID: in.AttendanceID,
		Type:               in.Breakdown.Type,
		Amount:             in.Breakdown.TotalDeduction,
		MinutesDeducted:    in.Breakdown.DeductMinutes,
		Breakdown:          in.Breakdown,
		Status:             deduction.StatusPending,
		EffectiveMonth:     in.Month,
		EffectiveYear:      in.Year,
	}
	d.AppendNote(now, in.Breakdown.Describe())

	if !in.RequireReview {
		actor := user.SystemActorID
		d.Status = deduction.StatusApproved
		d.ApprovedBy = &actor
		d.ApprovedAt = &now
		d.AppendNote(now, "auto-approved by system")
	}

	created, err := i.deductionRepo.Create(ctx, d)
	if err != nil {
		return deduction.Deduction{}, fmt.Errorf("failed to create deduction: %w", err)
	}

	slog.Info("deduction issued",
		"deduction_id", created.ID,
		"company_id", created.CompanyID,
		"employee_id", created.EmployeeID,
		"type", created.Type,
		"amount", created.Amount.StringFixed(2),
		"status", created.Status,
	)
	return created, nil
}

// Cancel voids a deduction and reverses its ledger entry using the stored breakdown.
// Cancelling an already cancelled deduction returns it unchanged.
func (i *Issuer) Cancel(ctx context.Context, companyID string, deductionID string, actorID string, reason string) (deduction.Deduction, error) {
	existing, err := i.deductionRepo.GetByID(ctx, deductionID, companyID)
	if err != nil {
		return deduction.Deduction{}, err
	}

	release, err := i.locker.Acquire(ctx, lock.AttendanceKey(existing.EmployeeID))
	if err != nil {
		return deduction.Deduction{}, err
	}
	defer release()

	var result deduction.Deduction
	err = i.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := i.deductionRepo.GetByID(ctx, deductionID, companyID)
		if err != nil {
			return err
		}
		if d.Status == deduction.StatusCancelled {
			result = d
			return nil
		}
		if d.AppliedToPayroll {
			return &deduction.AlreadyAppliedError{DeductionID: d.ID, AppliedAt: d.AppliedAt}
		}

		if d.Type == deduction.TypeLate {
			balance, err := i.ledger.GetOrCreate(ctx, d.CompanyID, d.EmployeeID, d.EffectiveMonth, d.EffectiveYear)
			if err != nil {
				return err
			}
			if _, err := i.ledger.Reverse(ctx, balance, deduction.EntryFromBreakdown(d.Breakdown)); err != nil {
				return err
			}
		}

		now := i.now().UTC()
		d.Status = deduction.StatusCancelled
		d.CancelledBy = &actorID
		d.CancelledAt = &now
		if reason != "" {
			d.CancelReason = &reason
		}
		d.AppendNote(now, fmt.Sprintf("cancelled by %s: %s", actorID, reason))

		if err := i.deductionRepo.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update deduction: %w", err)
		}
		result = d
		return nil
	})
	if err != nil {
		return deduction.Deduction{}, err
	}

	slog.Info("deduction cancelled",
		"deduction_id", result.ID,
		"employee_id", result.EmployeeID,
		"actor_id", actorID,
	)
	return result, nil
}

// Approve moves a pending deduction to approved.
func (i *Issuer) Approve(ctx context.Context, companyID string, deductionID string, actorID string) (deduction.Deduction, error) {
	var result deduction.Deduction
	err := i.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := i.deductionRepo.GetByID(ctx, deductionID, companyID)
		if err != nil {
			return err
		}
		if d.Status != deduction.StatusPending {
			return fmt.Errorf("%w: deduction %s is %s", deduction.ErrDeductionNotPending, d.ID, d.Status)
		}

		now := i.now().UTC()
		d.Status = deduction.StatusApproved
		d.ApprovedBy = &actorID
		d.ApprovedAt = &now
		d.AppendNote(now, fmt.Sprintf("approved by %s", actorID))

		if err := i.deductionRepo.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update deduction: %w", err)
		}
		result = d
		return nil
	})
	if err != nil {
		return deduction.Deduction{}, err
	}
	return result, nil
}

// MarkAppliedToPayroll flags the period's approved deductions as consumed by payroll.
// Flagged deductions can no longer be cancelled.
func (i *Issuer) MarkAppliedToPayroll(ctx context.Context, companyID string, month, year int) (int64, error) {
	n, err := i.deductionRepo.MarkAppliedToPayroll(ctx, companyID, month, year, i.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to mark deductions as applied: %w", err)
	}
	slog.Info("deductions applied to payroll",
		"company_id", companyID,
		"month", month,
		"year", year,
		"count", n,
	)
	return n, nil
}
