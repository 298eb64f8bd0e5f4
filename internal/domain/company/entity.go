package company

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the company timezone, falling back to UTC for unknown names.
func (c Company) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Tier maps a minimum lateness to a fixed deduction expressed in salary-days.
type Tier struct {
	MinMinutes    int             `json:"min_minutes"`
	DeductionDays decimal.Decimal `json:"deduction_days"`
}

// DeductionPolicy is the company-wide lateness and early-leave deduction configuration.
type DeductionPolicy struct {
	CompanyID                     string
	AutoDeductionEnabled          bool
	RequireReview                 bool
	GracePeriodMinutes            int
	MonthlyGraceMinutes           int
	LateThresholdMinutes          int
	LateDeductionRate             decimal.Decimal
	FirstViolationMultiplier      decimal.Decimal
	SecondViolationMultiplier     decimal.Decimal
	ThirdViolationMultiplier      decimal.Decimal
	MaxDailyDeductionDays         decimal.Decimal
	WorkingDaysPerMonth           int
	EarlyCheckoutEnabled          bool
	EarlyCheckoutThresholdMinutes int
	Tiers                         []Tier
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

// DefaultDeductionPolicy is applied to companies that never configured one.
func DefaultDeductionPolicy(companyID string) DeductionPolicy {
	return DeductionPolicy{
		CompanyID:                     companyID,
		AutoDeductionEnabled:          true,
		RequireReview:                 false,
		GracePeriodMinutes:            15,
		MonthlyGraceMinutes:           60,
		LateThresholdMinutes:          15,
		LateDeductionRate:             decimal.Zero,
		FirstViolationMultiplier:      decimal.NewFromInt(1),
		SecondViolationMultiplier:     decimal.NewFromInt(2),
		ThirdViolationMultiplier:      decimal.NewFromInt(3),
		MaxDailyDeductionDays:         decimal.NewFromInt(1),
		WorkingDaysPerMonth:           22,
		EarlyCheckoutEnabled:          false,
		EarlyCheckoutThresholdMinutes: 0,
	}
}

// Validate rejects a policy the deduction calculator cannot evaluate.
// Every failure wraps ErrMalformedPolicy.
func (p DeductionPolicy) Validate() error {
	switch {
	case p.GracePeriodMinutes < 0:
		return malformed("grace_period_minutes must not be negative")
	case p.MonthlyGraceMinutes < 0:
		return malformed("monthly_grace_minutes must not be negative")
	case p.LateThresholdMinutes < 0:
		return malformed("late_threshold_minutes must not be negative")
	case p.LateDeductionRate.IsNegative():
		return malformed("late_deduction_rate must not be negative")
	case !p.FirstViolationMultiplier.IsPositive(),
		!p.SecondViolationMultiplier.IsPositive(),
		!p.ThirdViolationMultiplier.IsPositive():
		return malformed("violation multipliers must be positive")
	case p.MaxDailyDeductionDays.IsNegative():
		return malformed("max_daily_deduction_days must not be negative")
	case p.WorkingDaysPerMonth <= 0:
		return malformed("working_days_per_month must be positive")
	case p.EarlyCheckoutThresholdMinutes < 0:
		return malformed("early_checkout_threshold_minutes must not be negative")
	}

	for i, tier := range p.Tiers {
		if tier.MinMinutes < 0 {
			return malformed(fmt.Sprintf("tier %d: min_minutes must not be negative", i))
		}
		if tier.DeductionDays.IsNegative() {
			return malformed(fmt.Sprintf("tier %d: deduction_days must not be negative", i))
		}
		if i > 0 && tier.MinMinutes <= p.Tiers[i-1].MinMinutes {
			return malformed(fmt.Sprintf("tier %d: tiers must be ordered by strictly increasing min_minutes", i))
		}
	}

	return nil
}

func malformed(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformedPolicy, msg)
}
