package company

import (
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// DEDUCTION POLICY DTOs
// ========================================

type UpdateDeductionPolicyRequest struct {
	AutoDeductionEnabled          *bool            `json:"auto_deduction_enabled"`
	RequireReview                 *bool            `json:"require_review"`
	GracePeriodMinutes            *int             `json:"grace_period_minutes"`
	MonthlyGraceMinutes           *int             `json:"monthly_grace_minutes"`
	LateThresholdMinutes          *int             `json:"late_threshold_minutes"`
	LateDeductionRate             *decimal.Decimal `json:"late_deduction_rate"`
	FirstViolationMultiplier      *decimal.Decimal `json:"first_violation_multiplier"`
	SecondViolationMultiplier     *decimal.Decimal `json:"second_violation_multiplier"`
	ThirdViolationMultiplier      *decimal.Decimal `json:"third_violation_multiplier"`
	MaxDailyDeductionDays         *decimal.Decimal `json:"max_daily_deduction_days"`
	WorkingDaysPerMonth           *int             `json:"working_days_per_month"`
	EarlyCheckoutEnabled          *bool            `json:"early_checkout_enabled"`
	EarlyCheckoutThresholdMinutes *int             `json:"early_checkout_threshold_minutes"`
	Tiers                         *[]Tier          `json:"tiers"`
}

func (r *UpdateDeductionPolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	nonNegative := func(field string, v *int) {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not be negative",
			})
		}
	}
	nonNegative("grace_period_minutes", r.GracePeriodMinutes)
	nonNegative("monthly_grace_minutes", r.MonthlyGraceMinutes)
	nonNegative("late_threshold_minutes", r.LateThresholdMinutes)
	nonNegative("early_checkout_threshold_minutes", r.EarlyCheckoutThresholdMinutes)

	if r.LateDeductionRate != nil && r.LateDeductionRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "late_deduction_rate",
			Message: "late_deduction_rate must not be negative",
		})
	}

	positive := func(field string, v *decimal.Decimal) {
		if v != nil && !v.IsPositive() {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be greater than 0",
			})
		}
	}
	positive("first_violation_multiplier", r.FirstViolationMultiplier)
	positive("second_violation_multiplier", r.SecondViolationMultiplier)
	positive("third_violation_multiplier", r.ThirdViolationMultiplier)

	if r.MaxDailyDeductionDays != nil && r.MaxDailyDeductionDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "max_daily_deduction_days",
			Message: "max_daily_deduction_days must not be negative",
		})
	}

	if r.WorkingDaysPerMonth != nil && (*r.WorkingDaysPerMonth <= 0 || *r.WorkingDaysPerMonth > 31) {
		errs = append(errs, validator.ValidationError{
			Field:   "working_days_per_month",
			Message: "working_days_per_month must be between 1 and 31",
		})
	}

	if r.Tiers != nil {
		tiers := *r.Tiers
		for i, tier := range tiers {
			if tier.MinMinutes < 0 || tier.DeductionDays.IsNegative() {
				errs = append(errs, validator.ValidationError{
					Field:   "tiers",
					Message: "tier values must not be negative",
				})
				break
			}
			if i > 0 && tier.MinMinutes <= tiers[i-1].MinMinutes {
				errs = append(errs, validator.ValidationError{
					Field:   "tiers",
					Message: "tiers must be ordered by strictly increasing min_minutes",
				})
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ApplyTo copies the fields present in the request onto policy.
func (r *UpdateDeductionPolicyRequest) ApplyTo(policy *DeductionPolicy) {
	if r.AutoDeductionEnabled != nil {
		policy.AutoDeductionEnabled = *r.AutoDeductionEnabled
	}
	if r.RequireReview != nil {
		policy.RequireReview = *r.RequireReview
	}
	if r.GracePeriodMinutes != nil {
		policy.GracePeriodMinutes = *r.GracePeriodMinutes
	}
	if r.MonthlyGraceMinutes != nil {
		policy.MonthlyGraceMinutes = *r.MonthlyGraceMinutes
	}
	if r.LateThresholdMinutes != nil {
		policy.LateThresholdMinutes = *r.LateThresholdMinutes
	}
	if r.LateDeductionRate != nil {
		policy.LateDeductionRate = *r.LateDeductionRate
	}
	if r.FirstViolationMultiplier != nil {
		policy.FirstViolationMultiplier = *r.FirstViolationMultiplier
	}
	if r.SecondViolationMultiplier != nil {
		policy.SecondViolationMultiplier = *r.SecondViolationMultiplier
	}
	if r.ThirdViolationMultiplier != nil {
		policy.ThirdViolationMultiplier = *r.ThirdViolationMultiplier
	}
	if r.MaxDailyDeductionDays != nil {
		policy.MaxDailyDeductionDays = *r.MaxDailyDeductionDays
	}
	if r.WorkingDaysPerMonth != nil {
		policy.WorkingDaysPerMonth = *r.WorkingDaysPerMonth
	}
	if r.EarlyCheckoutEnabled != nil {
		policy.EarlyCheckoutEnabled = *r.EarlyCheckoutEnabled
	}
	if r.EarlyCheckoutThresholdMinutes != nil {
		policy.EarlyCheckoutThresholdMinutes = *r.EarlyCheckoutThresholdMinutes
	}
	if r.Tiers != nil {
		policy.Tiers = append([]Tier(nil), (*r.Tiers)...)
	}
}

type DeductionPolicyResponse struct {
	CompanyID                     string          `json:"company_id"`
	AutoDeductionEnabled          bool            `json:"auto_deduction_enabled"`
	RequireReview                 bool            `json:"require_review"`
	GracePeriodMinutes            int             `json:"grace_period_minutes"`
	MonthlyGraceMinutes           int             `json:"monthly_grace_minutes"`
	LateThresholdMinutes          int             `json:"late_threshold_minutes"`
	LateDeductionRate             decimal.Decimal `json:"late_deduction_rate"`
	FirstViolationMultiplier      decimal.Decimal `json:"first_violation_multiplier"`
	SecondViolationMultiplier     decimal.Decimal `json:"second_violation_multiplier"`
	ThirdViolationMultiplier      decimal.Decimal `json:"third_violation_multiplier"`
	MaxDailyDeductionDays         decimal.Decimal `json:"max_daily_deduction_days"`
	WorkingDaysPerMonth           int             `json:"working_days_per_month"`
	EarlyCheckoutEnabled          bool            `json:"early_checkout_enabled"`
	EarlyCheckoutThresholdMinutes int             `json:"early_checkout_threshold_minutes"`
	Tiers                         []Tier          `json:"tiers"`
}

func NewDeductionPolicyResponse(p DeductionPolicy) DeductionPolicyResponse {
	tiers := p.Tiers
	if tiers == nil {
		tiers = []Tier{}
	}
	return DeductionPolicyResponse{
		CompanyID:                     p.CompanyID,
		AutoDeductionEnabled:          p.AutoDeductionEnabled,
		RequireReview:                 p.RequireReview,
		GracePeriodMinutes:            p.GracePeriodMinutes,
		MonthlyGraceMinutes:           p.MonthlyGraceMinutes,
		LateThresholdMinutes:          p.LateThresholdMinutes,
		LateDeductionRate:             p.LateDeductionRate,
		FirstViolationMultiplier:      p.FirstViolationMultiplier,
		SecondViolationMultiplier:     p.SecondViolationMultiplier,
		ThirdViolationMultiplier:      p.ThirdViolationMultiplier,
		MaxDailyDeductionDays:         p.MaxDailyDeductionDays,
		WorkingDaysPerMonth:           p.WorkingDaysPerMonth,
		EarlyCheckoutEnabled:          p.EarlyCheckoutEnabled,
		EarlyCheckoutThresholdMinutes: p.EarlyCheckoutThresholdMinutes,
		Tiers:                         tiers,
	}
}
