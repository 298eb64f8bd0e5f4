package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	balances := NewGraceBalanceRepository(s)
	deductions := NewDeductionRepository(s)

	before, err := balances.GetOrCreate(ctx, "co", "emp", 3, 2025)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := balances.GetOrCreate(ctx, "co", "emp", 3, 2025)
		require.NoError(t, err)
		b.LateCount = 1
		b.TotalDeductionAmount = decimal.NewFromInt(10)
		_, err = balances.Update(ctx, b)
		require.NoError(t, err)

		_, err = deductions.Create(ctx, deduction.Deduction{CompanyID: "co", EmployeeID: "emp", EffectiveMonth: 3, EffectiveYear: 2025})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := balances.Get(ctx, "emp", 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	list, err := deductions.ListByCompanyPeriod(ctx, "co", 3, 2025)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	companies := NewCompanyRepository(s)

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := companies.Create(ctx, company.Company{ID: "co", Name: "Acme"})
			return err
		})
	})
	require.NoError(t, err)

	got, err := companies.GetByID(ctx, "co")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
}

func TestGraceBalance_GetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewGraceBalanceRepository(NewStore())

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := repo.GetOrCreate(ctx, "co", "emp", 1, 2025)
			assert.NoError(t, err)
			ids[i] = b.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	list, err := repo.ListByCompanyPeriod(ctx, "co", 1, 2025)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].LateCount)
	assert.True(t, list[0].TotalDeductionAmount.IsZero())
}

func TestGraceBalance_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewGraceBalanceRepository(NewStore())

	b, err := repo.GetOrCreate(ctx, "co", "emp", 1, 2025)
	require.NoError(t, err)

	first := b
	first.LateCount = 1
	updated, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, b.Version+1, updated.Version)

	stale := b
	stale.LateCount = 5
	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, deduction.ErrConcurrentModification)

	got, err := repo.Get(ctx, "emp", 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LateCount)
}

func TestDeduction_MarkAppliedToPayroll(t *testing.T) {
	ctx := context.Background()
	repo := NewDeductionRepository(NewStore())

	approved, err := repo.Create(ctx, deduction.Deduction{CompanyID: "co", Status: deduction.StatusApproved, EffectiveMonth: 2, EffectiveYear: 2025})
	require.NoError(t, err)
	_, err = repo.Create(ctx, deduction.Deduction{CompanyID: "co", Status: deduction.StatusPending, EffectiveMonth: 2, EffectiveYear: 2025})
	require.NoError(t, err)
	_, err = repo.Create(ctx, deduction.Deduction{CompanyID: "co", Status: deduction.StatusApproved, EffectiveMonth: 3, EffectiveYear: 2025})
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	n, err := repo.MarkAppliedToPayroll(ctx, "co", 2, 2025, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, approved.ID, "co")
	require.NoError(t, err)
	assert.True(t, got.AppliedToPayroll)
	require.NotNil(t, got.AppliedAt)
	assert.Equal(t, at, *got.AppliedAt)

	n, err = repo.MarkAppliedToPayroll(ctx, "co", 2, 2025, at)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestShift_AssignAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewShiftRepository(NewStore())

	night, err := schedule.NewShift(schedule.TimeOfDay{Hour: 22}, schedule.TimeOfDay{Hour: 6}, 0, true)
	require.NoError(t, err)
	night.CompanyID = "co"
	night, err = repo.CreateShift(ctx, night)
	require.NoError(t, err)

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.Assign(ctx, schedule.ShiftAssignment{CompanyID: "co", EmployeeID: "emp", Date: date, ShiftID: night.ID})
	require.NoError(t, err)

	_, err = repo.Assign(ctx, schedule.ShiftAssignment{CompanyID: "co", EmployeeID: "emp", Date: date, ShiftID: night.ID})
	assert.ErrorIs(t, err, schedule.ErrShiftAlreadyAssigned)

	got, err := repo.GetAssignment(ctx, "co", "emp", date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, night.ID, got.ID)

	none, err := repo.GetAssignment(ctx, "co", "emp", date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, none)
}
