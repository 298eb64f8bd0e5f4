package deduction

import (
	"fmt"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PolicyMode is how the monetary amount of a late event is derived.
// It is resolved once per calculation.
type PolicyMode interface {
	mode() deduction.CalculationMode
}

// PerMinuteMode charges each deductible minute at Rate times the escalation multiplier.
type PerMinuteMode struct {
	Rate decimal.Decimal
}

// TieredMode replaces the per-minute amount with the salary-days of the highest matching tier.
// Events below the first tier are charged per minute at Rate.
type TieredMode struct {
	Rate  decimal.Decimal
	Tiers []company.Tier
}

func (PerMinuteMode) mode() deduction.CalculationMode { return deduction.ModePerMinute }
func (TieredMode) mode() deduction.CalculationMode    { return deduction.ModeTiered }

// ResolveMode picks the calculation mode from the policy. Tiers must already be ordered.
func ResolveMode(policy company.DeductionPolicy, baseRate decimal.Decimal) PolicyMode {
	if len(policy.Tiers) > 0 {
		return TieredMode{Rate: baseRate, Tiers: policy.Tiers}
	}
	return PerMinuteMode{Rate: baseRate}
}

// Select returns the tier with the greatest MinMinutes <= lateMinutes, or nil.
func (m TieredMode) Select(lateMinutes int) *company.Tier {
	var selected *company.Tier
	for i := range m.Tiers {
		if m.Tiers[i].MinMinutes <= lateMinutes {
			selected = &m.Tiers[i]
		}
	}
	return selected
}

// LateInput is everything a late-arrival deduction depends on.
// Balance must be read inside the same transaction the result is applied in.
type LateInput struct {
	LateMinutes int
	Balance     deduction.GraceBalance
	Policy      company.DeductionPolicy
	Overrides   employee.DeductionOverrides
}

type EarlyLeaveInput struct {
	EarlyMinutes int
	Policy       company.DeductionPolicy
	Overrides    employee.DeductionOverrides
}

// CalculateLate computes the deduction for a late arrival.
// A disabled policy or an opted-out employee yields a skipped breakdown, not an error.
func CalculateLate(in LateInput) (deduction.Breakdown, error) {
	if in.LateMinutes < 0 {
		return deduction.Breakdown{}, fmt.Errorf("%w: late minutes %d", deduction.ErrInvalidMinutes, in.LateMinutes)
	}
	if err := in.Policy.Validate(); err != nil {
		return deduction.Breakdown{}, err
	}

	b := deduction.Breakdown{
		Type:        deduction.TypeLate,
		LateMinutes: in.LateMinutes,
	}
	if reason := eligibility(in.Policy, in.Overrides); reason != deduction.SkipNone {
		b.SkipReason = reason
		return b, nil
	}

	baseRate, err := baseRate(in.Policy, in.Overrides)
	if err != nil {
		return deduction.Breakdown{}, err
	}

	// Daily threshold split
	b.DailyThreshold = in.Policy.LateThresholdMinutes
	if in.LateMinutes > b.DailyThreshold {
		b.ImmediateDeduct = in.LateMinutes - b.DailyThreshold
		b.GraceEligibleMinutes = b.DailyThreshold
	} else {
		b.GraceEligibleMinutes = in.LateMinutes
	}

	// Grace consumption
	b.RemainingGrace = in.Balance.RemainingGrace(in.Policy.MonthlyGraceMinutes)
	if b.GraceEligibleMinutes <= b.RemainingGrace {
		b.UseGraceMinutes = b.GraceEligibleMinutes
	} else {
		b.UseGraceMinutes = max(b.RemainingGrace, 0)
		b.AdditionalDeduct = b.GraceEligibleMinutes - b.UseGraceMinutes
	}
	b.DeductMinutes = b.ImmediateDeduct + b.AdditionalDeduct

	// Escalation uses the violation count before this event.
	b.PriorViolations = in.Balance.LateCount
	b.Multiplier = multiplierFor(in.Policy, in.Balance.LateCount)
	b.BaseRate = baseRate
	b.EffectiveRate = baseRate.Mul(b.Multiplier)

	// Mode records what produced the amount: a tiered policy below its first tier charges per minute.
	b.Mode = deduction.ModePerMinute
	amount := decimal.NewFromInt(int64(b.DeductMinutes)).Mul(b.EffectiveRate)
	if tiered, ok := ResolveMode(in.Policy, baseRate).(TieredMode); ok {
		if tier := tiered.Select(in.LateMinutes); tier != nil {
			daily, err := dailySalary(in.Policy, in.Overrides)
			if err != nil {
				return deduction.Breakdown{}, err
			}
			t := *tier
			b.TierApplied = &t
			b.DailySalary = daily
			b.Mode = tiered.mode()
			amount = tier.DeductionDays.Mul(daily)
		}
	}

	if err := applyCap(&b, in.Policy, in.Overrides, amount); err != nil {
		return deduction.Breakdown{}, err
	}
	return b, nil
}

// CalculateEarlyLeave computes the deduction for leaving before the shift end.
// There is no grace balance and no escalation; minutes are charged at the base rate
// once they exceed the early checkout threshold.
func CalculateEarlyLeave(in EarlyLeaveInput) (deduction.Breakdown, error) {
	if in.EarlyMinutes < 0 {
		return deduction.Breakdown{}, fmt.Errorf("%w: early minutes %d", deduction.ErrInvalidMinutes, in.EarlyMinutes)
	}
	if err := in.Policy.Validate(); err != nil {
		return deduction.Breakdown{}, err
	}

	b := deduction.Breakdown{
		Type:                deduction.TypeEarlyLeave,
		EarlyLeaveMinutes:   in.EarlyMinutes,
		EarlyLeaveThreshold: in.Policy.EarlyCheckoutThresholdMinutes,
		Mode:                deduction.ModePerMinute,
	}

	reason := eligibility(in.Policy, in.Overrides)
	switch {
	case reason != deduction.SkipNone:
	case !in.Policy.EarlyCheckoutEnabled:
		reason = deduction.SkipEarlyCheckoutDisabled
	case in.EarlyMinutes <= in.Policy.EarlyCheckoutThresholdMinutes:
		reason = deduction.SkipWithinEarlyThreshold
	}
	if reason != deduction.SkipNone {
		b.SkipReason = reason
		return b, nil
	}

	baseRate, err := baseRate(in.Policy, in.Overrides)
	if err != nil {
		return deduction.Breakdown{}, err
	}

	b.DeductMinutes = in.EarlyMinutes
	b.Multiplier = decimal.NewFromInt(1)
	b.BaseRate = baseRate
	b.EffectiveRate = baseRate

	amount := decimal.NewFromInt(int64(b.DeductMinutes)).Mul(baseRate)
	if err := applyCap(&b, in.Policy, in.Overrides, amount); err != nil {
		return deduction.Breakdown{}, err
	}
	return b, nil
}

func eligibility(policy company.DeductionPolicy, overrides employee.DeductionOverrides) deduction.SkipReason {
	if !policy.AutoDeductionEnabled {
		return deduction.SkipDisabledGlobally
	}
	if overrides.ExcludedFromAutoDeduction() {
		return deduction.SkipEmployeeExcluded
	}
	return deduction.SkipNone
}

// baseRate prefers the employee's personal rate over the company rate.
func baseRate(policy company.DeductionPolicy, overrides employee.DeductionOverrides) (decimal.Decimal, error) {
	rate := policy.LateDeductionRate
	if overrides.LateDeductionRate != nil {
		rate = *overrides.LateDeductionRate
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", deduction.ErrInvalidRate, rate.String())
	}
	return rate, nil
}

func multiplierFor(policy company.DeductionPolicy, priorViolations int) decimal.Decimal {
	switch {
	case priorViolations <= 0:
		return policy.FirstViolationMultiplier
	case priorViolations == 1:
		return policy.SecondViolationMultiplier
	default:
		return policy.ThirdViolationMultiplier
	}
}

func dailySalary(policy company.DeductionPolicy, overrides employee.DeductionOverrides) (decimal.Decimal, error) {
	if overrides.BaseSalary == nil || !overrides.BaseSalary.IsPositive() {
		return decimal.Zero, deduction.ErrBaseSalaryRequired
	}
	return overrides.BaseSalary.Div(decimal.NewFromInt(int64(policy.WorkingDaysPerMonth))), nil
}

// applyCap truncates amount to MaxDailyDeductionDays salary-days and rounds the result to cents.
func applyCap(b *deduction.Breakdown, policy company.DeductionPolicy, overrides employee.DeductionOverrides, amount decimal.Decimal) error {
	b.OriginalAmount = amount.Round(2)
	b.TotalDeduction = b.OriginalAmount

	if !policy.MaxDailyDeductionDays.IsPositive() || !amount.IsPositive() {
		return nil
	}

	daily := b.DailySalary
	if daily.IsZero() {
		var err error
		if daily, err = dailySalary(policy, overrides); err != nil {
			return err
		}
		b.DailySalary = daily
	}

	maxAmount := daily.Mul(policy.MaxDailyDeductionDays).Round(2)
	b.MaxDeductionAmount = &maxAmount
	if b.OriginalAmount.GreaterThan(maxAmount) {
		b.TotalDeduction = maxAmount
		b.IsCapped = true
	}
	return nil
}
