package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

type graceBalanceRepository struct {
	s *Store
}

func NewGraceBalanceRepository(s *Store) deduction.GraceBalanceRepository {
	return &graceBalanceRepository{s: s}
}

func (r *graceBalanceRepository) GetOrCreate(ctx context.Context, companyID string, employeeID string, month, year int) (deduction.GraceBalance, error) {
	var b deduction.GraceBalance
	err := r.s.write(ctx, func(t *tables) error {
		k := balanceKey{employeeID: employeeID, month: month, year: year}
		existing, ok := t.balances[k]
		if ok {
			b = existing
			return nil
		}
		now := r.s.now().UTC()
		b = deduction.GraceBalance{
			ID:                   newID(),
			CompanyID:            companyID,
			EmployeeID:           employeeID,
			Month:                month,
			Year:                 year,
			TotalDeductionAmount: decimal.Zero,
			Version:              1,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		t.balances[k] = b
		return nil
	})
	return b, err
}

func (r *graceBalanceRepository) Get(ctx context.Context, employeeID string, month, year int) (deduction.GraceBalance, error) {
	var (
		b  deduction.GraceBalance
		ok bool
	)
	r.s.read(func(t *tables) { b, ok = t.balances[balanceKey{employeeID: employeeID, month: month, year: year}] })
	if !ok {
		return deduction.GraceBalance{}, deduction.ErrBalanceNotFound
	}
	return b, nil
}

func (r *graceBalanceRepository) Update(ctx context.Context, b deduction.GraceBalance) (deduction.GraceBalance, error) {
	err := r.s.write(ctx, func(t *tables) error {
		k := balanceKey{employeeID: b.EmployeeID, month: b.Month, year: b.Year}
		existing, ok := t.balances[k]
		if !ok {
			return deduction.ErrBalanceNotFound
		}
		if existing.Version != b.Version {
			return deduction.ErrConcurrentModification
		}
		b.Version++
		b.CreatedAt = existing.CreatedAt
		b.UpdatedAt = r.s.now().UTC()
		t.balances[k] = b
		return nil
	})
	if err != nil {
		return deduction.GraceBalance{}, err
	}
	return b, nil
}

func (r *graceBalanceRepository) ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]deduction.GraceBalance, error) {
	var out []deduction.GraceBalance
	r.s.read(func(t *tables) {
		for _, b := range t.balances {
			if b.CompanyID == companyID && b.Month == month && b.Year == year {
				out = append(out, b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type deductionRepository struct {
	s *Store
}

func NewDeductionRepository(s *Store) deduction.DeductionRepository {
	return &deductionRepository{s: s}
}

func (r *deductionRepository) Create(ctx context.Context, d deduction.Deduction) (deduction.Deduction, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if d.ID == "" {
			d.ID = newID()
		}
		now := r.s.now().UTC()
		d.CreatedAt, d.UpdatedAt = now, now
		t.deductions[d.ID] = d
		return nil
	})
	return d, err
}

func (r *deductionRepository) GetByID(ctx context.Context, id string, companyID string) (deduction.Deduction, error) {
	var (
		d  deduction.Deduction
		ok bool
	)
	r.s.read(func(t *tables) { d, ok = t.deductions[id] })
	if !ok || d.CompanyID != companyID {
		return deduction.Deduction{}, deduction.ErrDeductionNotFound
	}
	return d, nil
}

func (r *deductionRepository) Update(ctx context.Context, d deduction.Deduction) error {
	return r.s.write(ctx, func(t *tables) error {
		existing, ok := t.deductions[d.ID]
		if !ok || existing.CompanyID != d.CompanyID {
			return deduction.ErrDeductionNotFound
		}
		d.CreatedAt = existing.CreatedAt
		d.UpdatedAt = r.s.now().UTC()
		t.deductions[d.ID] = d
		return nil
	})
}

func (r *deductionRepository) list(match func(d deduction.Deduction) bool) []deduction.Deduction {
	var out []deduction.Deduction
	r.s.read(func(t *tables) {
		for _, d := range t.deductions {
			if match(d) {
				out = append(out, d)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *deductionRepository) ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, month, year int) ([]deduction.Deduction, error) {
	return r.list(func(d deduction.Deduction) bool {
		return d.CompanyID == companyID && d.EmployeeID == employeeID && d.EffectiveMonth == month && d.EffectiveYear == year
	}), nil
}

func (r *deductionRepository) ListByCompanyPeriod(ctx context.Context, companyID string, month, year int) ([]deduction.Deduction, error) {
	return r.list(func(d deduction.Deduction) bool {
		return d.CompanyID == companyID && d.EffectiveMonth == month && d.EffectiveYear == year
	}), nil
}

func (r *deductionRepository) MarkAppliedToPayroll(ctx context.Context, companyID string, month, year int, appliedAt time.Time) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(t *tables) error {
		for id, d := range t.deductions {
			if d.CompanyID != companyID || d.EffectiveMonth != month || d.EffectiveYear != year ||
				d.Status != deduction.StatusApproved || d.AppliedToPayroll {
				continue
			}
			at := appliedAt
			d.AppliedToPayroll = true
			d.AppliedAt = &at
			d.UpdatedAt = appliedAt
			t.deductions[id] = d
			n++
		}
		return nil
	})
	return n, err
}
