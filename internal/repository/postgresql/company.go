package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	timezone := newCompany.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	query := `
		INSERT INTO companies (name, timezone)
		VALUES ($1, $2)
		RETURNING id, name, timezone, created_at, updated_at
	`

	var created company.Company
	if err := q.QueryRow(ctx, query, newCompany.Name, timezone).Scan(
		&created.ID, &created.Name, &created.Timezone, &created.CreatedAt, &created.UpdatedAt,
	); err != nil {
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return created, nil
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `SELECT id, name, timezone, created_at, updated_at FROM companies WHERE id = $1`

	var found company.Company
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID, &found.Name, &found.Timezone, &found.CreatedAt, &found.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company with id %s: %w", id, err)
	}
	return found, nil
}

type policyRepositoryImpl struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) company.PolicyRepository {
	return &policyRepositoryImpl{db: db}
}

const policyColumns = `company_id, auto_deduction_enabled, require_review,
	grace_period_minutes, monthly_grace_minutes, late_threshold_minutes, late_deduction_rate,
	first_violation_multiplier, second_violation_multiplier, third_violation_multiplier,
	max_daily_deduction_days, working_days_per_month,
	early_checkout_enabled, early_checkout_threshold_minutes, tiers, created_at, updated_at`

func scanPolicy(row pgx.Row) (company.DeductionPolicy, error) {
	var p company.DeductionPolicy
	var tiersBytes []byte
	err := row.Scan(
		&p.CompanyID, &p.AutoDeductionEnabled, &p.RequireReview,
		&p.GracePeriodMinutes, &p.MonthlyGraceMinutes, &p.LateThresholdMinutes, &p.LateDeductionRate,
		&p.FirstViolationMultiplier, &p.SecondViolationMultiplier, &p.ThirdViolationMultiplier,
		&p.MaxDailyDeductionDays, &p.WorkingDaysPerMonth,
		&p.EarlyCheckoutEnabled, &p.EarlyCheckoutThresholdMinutes, &tiersBytes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return company.DeductionPolicy{}, err
	}
	if err := json.Unmarshal(tiersBytes, &p.Tiers); err != nil {
		return company.DeductionPolicy{}, fmt.Errorf("%w: tiers: %v", company.ErrMalformedPolicy, err)
	}
	return p, nil
}

// GetDeductionPolicy implements company.PolicyRepository.
func (r *policyRepositoryImpl) GetDeductionPolicy(ctx context.Context, companyID string) (company.DeductionPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + ` FROM deduction_policies WHERE company_id = $1`

	p, err := scanPolicy(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return company.DeductionPolicy{}, company.ErrPolicyNotFound
		}
		return company.DeductionPolicy{}, fmt.Errorf("failed to get deduction policy: %w", err)
	}
	return p, nil
}

// UpsertDeductionPolicy implements company.PolicyRepository.
func (r *policyRepositoryImpl) UpsertDeductionPolicy(ctx context.Context, policy company.DeductionPolicy) (company.DeductionPolicy, error) {
	q := GetQuerier(ctx, r.db)

	tiers := policy.Tiers
	if tiers == nil {
		tiers = []company.Tier{}
	}
	tiersJSON, err := json.Marshal(tiers)
	if err != nil {
		return company.DeductionPolicy{}, fmt.Errorf("failed to encode tiers: %w", err)
	}

	query := `
		INSERT INTO deduction_policies (
			company_id, auto_deduction_enabled, require_review,
			grace_period_minutes, monthly_grace_minutes, late_threshold_minutes, late_deduction_rate,
			first_violation_multiplier, second_violation_multiplier, third_violation_multiplier,
			max_daily_deduction_days, working_days_per_month,
			early_checkout_enabled, early_checkout_threshold_minutes, tiers
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (company_id) DO UPDATE SET
			auto_deduction_enabled = EXCLUDED.auto_deduction_enabled,
			require_review = EXCLUDED.require_review,
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			monthly_grace_minutes = EXCLUDED.monthly_grace_minutes,
			late_threshold_minutes = EXCLUDED.late_threshold_minutes,
			late_deduction_rate = EXCLUDED.late_deduction_rate,
			first_violation_multiplier = EXCLUDED.first_violation_multiplier,
			second_violation_multiplier = EXCLUDED.second_violation_multiplier,
			third_violation_multiplier = EXCLUDED.third_violation_multiplier,
			max_daily_deduction_days = EXCLUDED.max_daily_deduction_days,
			working_days_per_month = EXCLUDED.working_days_per_month,
			early_checkout_enabled = EXCLUDED.early_checkout_enabled,
			early_checkout_threshold_minutes = EXCLUDED.early_checkout_threshold_minutes,
			tiers = EXCLUDED.tiers,
			updated_at = NOW()
		RETURNING ` + policyColumns

	saved, err := scanPolicy(q.QueryRow(ctx, query,
		policy.CompanyID, policy.AutoDeductionEnabled, policy.RequireReview,
		policy.GracePeriodMinutes, policy.MonthlyGraceMinutes, policy.LateThresholdMinutes, policy.LateDeductionRate,
		policy.FirstViolationMultiplier, policy.SecondViolationMultiplier, policy.ThirdViolationMultiplier,
		policy.MaxDailyDeductionDays, policy.WorkingDaysPerMonth,
		policy.EarlyCheckoutEnabled, policy.EarlyCheckoutThresholdMinutes, tiersJSON,
	))
	if err != nil {
		return company.DeductionPolicy{}, fmt.Errorf("failed to upsert deduction policy: %w", err)
	}
	return saved, nil
}
