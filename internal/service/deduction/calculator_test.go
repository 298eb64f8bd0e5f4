package deduction

import (
	"testing"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

// testPolicy: 60 grace minutes, threshold 15, rate 2.0/min, multipliers 1/2/3, cap 1 day.
func testPolicy() company.DeductionPolicy {
	p := company.DefaultDeductionPolicy("company-1")
	p.LateDeductionRate = dec("2")
	return p
}

// salaried has a daily salary of 200000 at 22 working days.
func salaried() employee.DeductionOverrides {
	return employee.DeductionOverrides{BaseSalary: decPtr("4400000")}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestCalculateLate_FirstViolation(t *testing.T) {
	b, err := CalculateLate(LateInput{
		LateMinutes: 20,
		Policy:      testPolicy(),
		Overrides:   salaried(),
	})
	require.NoError(t, err)

	assert.Equal(t, deduction.TypeLate, b.Type)
	assert.False(t, b.Skipped())
	assert.Equal(t, 20, b.LateMinutes)
	assert.Equal(t, 15, b.DailyThreshold)
	assert.Equal(t, 15, b.GraceEligibleMinutes)
	assert.Equal(t, 5, b.ImmediateDeduct)
	assert.Equal(t, 60, b.RemainingGrace)
	assert.Equal(t, 15, b.UseGraceMinutes)
	assert.Equal(t, 0, b.AdditionalDeduct)
	assert.Equal(t, 5, b.DeductMinutes)
	assert.Equal(t, 0, b.PriorViolations)
	assertDecimal(t, "1", b.Multiplier)
	assertDecimal(t, "2", b.BaseRate)
	assertDecimal(t, "2", b.EffectiveRate)
	assert.Equal(t, deduction.ModePerMinute, b.Mode)
	assert.Nil(t, b.TierApplied)
	assertDecimal(t, "10", b.OriginalAmount)
	assertDecimal(t, "10", b.TotalDeduction)
	require.NotNil(t, b.MaxDeductionAmount)
	assertDecimal(t, "200000", *b.MaxDeductionAmount)
	assert.False(t, b.IsCapped)
}

func TestCalculateLate_SecondViolationDoublesImmediateExcess(t *testing.T) {
	balance := deduction.GraceBalance{GraceMinutesUsed: 15, LateCount: 1, TotalLateMinutes: 20, DeductedMinutes: 5}

	b, err := CalculateLate(LateInput{
		LateMinutes: 20,
		Balance:     balance,
		Policy:      testPolicy(),
		Overrides:   salaried(),
	})
	require.NoError(t, err)

	assert.Equal(t, 45, b.RemainingGrace)
	assert.Equal(t, 15, b.UseGraceMinutes)
	assert.Equal(t, 5, b.ImmediateDeduct)
	assert.Equal(t, 0, b.AdditionalDeduct)
	assert.Equal(t, 5, b.DeductMinutes)
	assert.Equal(t, 1, b.PriorViolations)
	assertDecimal(t, "2", b.Multiplier)
	assertDecimal(t, "4", b.EffectiveRate)
	// deductMinutes x baseRate x multiplier = 5 x 2 x 2
	assertDecimal(t, "20", b.TotalDeduction)
}

func TestCalculateLate_GraceExhausted(t *testing.T) {
	b, err := CalculateLate(LateInput{
		LateMinutes: 10,
		Balance:     deduction.GraceBalance{GraceMinutesUsed: 60, LateCount: 4},
		Policy:      testPolicy(),
		Overrides:   salaried(),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, b.RemainingGrace)
	assert.Equal(t, 10, b.GraceEligibleMinutes)
	assert.Equal(t, 0, b.ImmediateDeduct)
	assert.Equal(t, 0, b.UseGraceMinutes)
	assert.Equal(t, 10, b.AdditionalDeduct)
	assert.Equal(t, 10, b.DeductMinutes)
	assertDecimal(t, "3", b.Multiplier)
	assertDecimal(t, "60", b.TotalDeduction)
}

func TestCalculateLate_PartialGrace(t *testing.T) {
	b, err := CalculateLate(LateInput{
		LateMinutes: 12,
		Balance:     deduction.GraceBalance{GraceMinutesUsed: 52, LateCount: 1},
		Policy:      testPolicy(),
		Overrides:   salaried(),
	})
	require.NoError(t, err)

	assert.Equal(t, 8, b.RemainingGrace)
	assert.Equal(t, 8, b.UseGraceMinutes)
	assert.Equal(t, 4, b.AdditionalDeduct)
	assert.Equal(t, 4, b.DeductMinutes)
	assertDecimal(t, "16", b.TotalDeduction)
}

func TestCalculateLate_NegativeRemainingGraceAbsorbsNothing(t *testing.T) {
	p := testPolicy()
	p.MonthlyGraceMinutes = 30

	b, err := CalculateLate(LateInput{
		LateMinutes: 10,
		Balance:     deduction.GraceBalance{GraceMinutesUsed: 45},
		Policy:      p,
		Overrides:   salaried(),
	})
	require.NoError(t, err)

	assert.Equal(t, -15, b.RemainingGrace)
	assert.Equal(t, 0, b.UseGraceMinutes)
	assert.Equal(t, 10, b.AdditionalDeduct)
}

func TestCalculateLate_FullyAbsorbedIsZero(t *testing.T) {
	b, err := CalculateLate(LateInput{
		LateMinutes: 10,
		Policy:      testPolicy(),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, b.UseGraceMinutes)
	assert.Equal(t, 0, b.DeductMinutes)
	assert.True(t, b.TotalDeduction.IsZero())
	assert.Nil(t, b.MaxDeductionAmount)
}

func TestCalculateLate_SkipReasons(t *testing.T) {
	disabled := testPolicy()
	disabled.AutoDeductionEnabled = false

	b, err := CalculateLate(LateInput{LateMinutes: 30, Policy: disabled, Overrides: salaried()})
	require.NoError(t, err)
	assert.True(t, b.Skipped())
	assert.Equal(t, deduction.SkipDisabledGlobally, b.SkipReason)
	assert.Equal(t, 30, b.LateMinutes)
	assert.True(t, b.TotalDeduction.IsZero())

	excluded := salaried()
	excluded.EnableAutoDeduction = boolPtr(false)
	b, err = CalculateLate(LateInput{LateMinutes: 30, Policy: testPolicy(), Overrides: excluded})
	require.NoError(t, err)
	assert.Equal(t, deduction.SkipEmployeeExcluded, b.SkipReason)

	included := salaried()
	included.EnableAutoDeduction = boolPtr(true)
	b, err = CalculateLate(LateInput{LateMinutes: 30, Policy: testPolicy(), Overrides: included})
	require.NoError(t, err)
	assert.False(t, b.Skipped())
}

func TestCalculateLate_EmployeeRateOverride(t *testing.T) {
	o := salaried()
	o.LateDeductionRate = decPtr("5.5")

	b, err := CalculateLate(LateInput{LateMinutes: 20, Policy: testPolicy(), Overrides: o})
	require.NoError(t, err)
	assertDecimal(t, "5.5", b.BaseRate)
	assertDecimal(t, "27.5", b.TotalDeduction)
}

func TestCalculateLate_Cap(t *testing.T) {
	p := testPolicy()
	p.LateDeductionRate = dec("1000")
	o := employee.DeductionOverrides{BaseSalary: decPtr("2200000")}

	b, err := CalculateLate(LateInput{LateMinutes: 200, Policy: p, Overrides: o})
	require.NoError(t, err)

	assert.Equal(t, 185, b.DeductMinutes)
	assertDecimal(t, "100000", b.DailySalary)
	assertDecimal(t, "185000", b.OriginalAmount)
	assertDecimal(t, "100000", b.TotalDeduction)
	assert.True(t, b.IsCapped)
	assert.True(t, b.TotalDeduction.LessThanOrEqual(b.DailySalary.Mul(p.MaxDailyDeductionDays)))
}

func TestCalculateLate_NoCapWhenZeroDays(t *testing.T) {
	p := testPolicy()
	p.MaxDailyDeductionDays = decimal.Zero

	b, err := CalculateLate(LateInput{LateMinutes: 20, Policy: p})
	require.NoError(t, err)
	assertDecimal(t, "10", b.TotalDeduction)
	assert.Nil(t, b.MaxDeductionAmount)
	assert.False(t, b.IsCapped)
}

func TestCalculateLate_Tiers(t *testing.T) {
	p := testPolicy()
	p.Tiers = []company.Tier{
		{MinMinutes: 30, DeductionDays: dec("0.5")},
		{MinMinutes: 60, DeductionDays: dec("1")},
	}
	o := employee.DeductionOverrides{BaseSalary: decPtr("2200000")}

	t.Run("below first tier uses per-minute amount", func(t *testing.T) {
		b, err := CalculateLate(LateInput{LateMinutes: 20, Policy: p, Overrides: o})
		require.NoError(t, err)
		assert.Equal(t, deduction.ModePerMinute, b.Mode)
		assert.Nil(t, b.TierApplied)
		assert.NotContains(t, b.Describe(), "tier")
		assertDecimal(t, "10", b.TotalDeduction)
	})

	t.Run("greatest matching tier overrides amount", func(t *testing.T) {
		b, err := CalculateLate(LateInput{LateMinutes: 45, Policy: p, Overrides: o})
		require.NoError(t, err)
		require.NotNil(t, b.TierApplied)
		assert.Equal(t, deduction.ModeTiered, b.Mode)
		assert.Equal(t, 30, b.TierApplied.MinMinutes)
		assertDecimal(t, "50000", b.TotalDeduction)
		assert.Equal(t, 30, b.DeductMinutes)
	})

	t.Run("tier ignores the multiplier", func(t *testing.T) {
		b, err := CalculateLate(LateInput{
			LateMinutes: 60,
			Balance:     deduction.GraceBalance{LateCount: 2},
			Policy:      p,
			Overrides:   o,
		})
		require.NoError(t, err)
		require.NotNil(t, b.TierApplied)
		assert.Equal(t, 60, b.TierApplied.MinMinutes)
		assertDecimal(t, "3", b.Multiplier)
		assertDecimal(t, "100000", b.TotalDeduction)
		assert.False(t, b.IsCapped)
	})

	t.Run("tier amount is capped", func(t *testing.T) {
		capped := p
		capped.MaxDailyDeductionDays = dec("0.75")
		b, err := CalculateLate(LateInput{LateMinutes: 90, Policy: capped, Overrides: o})
		require.NoError(t, err)
		assertDecimal(t, "100000", b.OriginalAmount)
		assertDecimal(t, "75000", b.TotalDeduction)
		assert.True(t, b.IsCapped)
	})

	t.Run("tier requires base salary", func(t *testing.T) {
		_, err := CalculateLate(LateInput{LateMinutes: 45, Policy: p})
		assert.ErrorIs(t, err, deduction.ErrBaseSalaryRequired)
	})
}

func TestCalculateLate_FailsLoudly(t *testing.T) {
	t.Run("malformed policy", func(t *testing.T) {
		p := testPolicy()
		p.SecondViolationMultiplier = decimal.Zero
		_, err := CalculateLate(LateInput{LateMinutes: 20, Policy: p, Overrides: salaried()})
		assert.ErrorIs(t, err, company.ErrMalformedPolicy)
	})

	t.Run("unordered tiers", func(t *testing.T) {
		p := testPolicy()
		p.Tiers = []company.Tier{{MinMinutes: 60, DeductionDays: dec("1")}, {MinMinutes: 30, DeductionDays: dec("0.5")}}
		_, err := CalculateLate(LateInput{LateMinutes: 20, Policy: p, Overrides: salaried()})
		assert.ErrorIs(t, err, company.ErrMalformedPolicy)
	})

	t.Run("negative personal rate", func(t *testing.T) {
		o := salaried()
		o.LateDeductionRate = decPtr("-1")
		_, err := CalculateLate(LateInput{LateMinutes: 20, Policy: testPolicy(), Overrides: o})
		assert.ErrorIs(t, err, deduction.ErrInvalidRate)
	})

	t.Run("negative minutes", func(t *testing.T) {
		_, err := CalculateLate(LateInput{LateMinutes: -1, Policy: testPolicy()})
		assert.ErrorIs(t, err, deduction.ErrInvalidMinutes)
	})

	t.Run("cap without base salary", func(t *testing.T) {
		_, err := CalculateLate(LateInput{LateMinutes: 20, Policy: testPolicy()})
		assert.ErrorIs(t, err, deduction.ErrBaseSalaryRequired)
	})
}

func TestCalculateLate_EscalationIsNonDecreasing(t *testing.T) {
	p := testPolicy()
	balance := deduction.GraceBalance{}

	var amounts []decimal.Decimal
	for i := 0; i < 3; i++ {
		b, err := CalculateLate(LateInput{LateMinutes: 20, Balance: balance, Policy: p, Overrides: salaried()})
		require.NoError(t, err)
		amounts = append(amounts, b.TotalDeduction)
		balance = balance.Apply(deduction.EntryFromBreakdown(b))
	}

	assertDecimal(t, "10", amounts[0])
	assertDecimal(t, "20", amounts[1])
	assertDecimal(t, "30", amounts[2])
	assert.Equal(t, 3, balance.LateCount)
	assert.Equal(t, 45, balance.GraceMinutesUsed)
	assert.Equal(t, 15, balance.DeductedMinutes)
	assert.LessOrEqual(t, balance.GraceMinutesUsed, p.MonthlyGraceMinutes)
}

func TestCalculateEarlyLeave(t *testing.T) {
	p := testPolicy()
	p.EarlyCheckoutEnabled = true
	p.EarlyCheckoutThresholdMinutes = 10

	t.Run("over threshold", func(t *testing.T) {
		b, err := CalculateEarlyLeave(EarlyLeaveInput{EarlyMinutes: 25, Policy: p, Overrides: salaried()})
		require.NoError(t, err)
		assert.Equal(t, deduction.TypeEarlyLeave, b.Type)
		assert.Equal(t, 25, b.EarlyLeaveMinutes)
		assert.Equal(t, 25, b.DeductMinutes)
		assertDecimal(t, "1", b.Multiplier)
		assertDecimal(t, "50", b.TotalDeduction)
	})

	t.Run("within threshold", func(t *testing.T) {
		b, err := CalculateEarlyLeave(EarlyLeaveInput{EarlyMinutes: 10, Policy: p, Overrides: salaried()})
		require.NoError(t, err)
		assert.Equal(t, deduction.SkipWithinEarlyThreshold, b.SkipReason)
	})

	t.Run("feature disabled", func(t *testing.T) {
		off := p
		off.EarlyCheckoutEnabled = false
		b, err := CalculateEarlyLeave(EarlyLeaveInput{EarlyMinutes: 60, Policy: off, Overrides: salaried()})
		require.NoError(t, err)
		assert.Equal(t, deduction.SkipEarlyCheckoutDisabled, b.SkipReason)
	})

	t.Run("global gate wins", func(t *testing.T) {
		off := p
		off.AutoDeductionEnabled = false
		b, err := CalculateEarlyLeave(EarlyLeaveInput{EarlyMinutes: 60, Policy: off, Overrides: salaried()})
		require.NoError(t, err)
		assert.Equal(t, deduction.SkipDisabledGlobally, b.SkipReason)
	})

	t.Run("capped", func(t *testing.T) {
		rich := p
		rich.LateDeductionRate = dec("5000")
		o := employee.DeductionOverrides{BaseSalary: decPtr("2200000")}
		b, err := CalculateEarlyLeave(EarlyLeaveInput{EarlyMinutes: 120, Policy: rich, Overrides: o})
		require.NoError(t, err)
		assertDecimal(t, "600000", b.OriginalAmount)
		assertDecimal(t, "100000", b.TotalDeduction)
		assert.True(t, b.IsCapped)
	})
}

func TestTieredMode_Select(t *testing.T) {
	m := TieredMode{Tiers: []company.Tier{
		{MinMinutes: 15, DeductionDays: dec("0.25")},
		{MinMinutes: 60, DeductionDays: dec("0.5")},
		{MinMinutes: 120, DeductionDays: dec("1")},
	}}

	assert.Nil(t, m.Select(14))
	assert.Equal(t, 15, m.Select(15).MinMinutes)
	assert.Equal(t, 15, m.Select(59).MinMinutes)
	assert.Equal(t, 60, m.Select(60).MinMinutes)
	assert.Equal(t, 120, m.Select(500).MinMinutes)
}

func TestBreakdown_Describe(t *testing.T) {
	b, err := CalculateLate(LateInput{LateMinutes: 20, Policy: testPolicy(), Overrides: salaried()})
	require.NoError(t, err)

	got := b.Describe()
	assert.Contains(t, got, "Late 20 min")
	assert.Contains(t, got, "grace absorbed 15 of 60")
	assert.Contains(t, got, "= 10.00")

	skipped := deduction.Breakdown{Type: deduction.TypeLate, SkipReason: deduction.SkipEmployeeExcluded}
	assert.Equal(t, "LATE deduction skipped: EMPLOYEE_EXCLUDED", skipped.Describe())
}
