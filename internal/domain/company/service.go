package company

import "context"

type CompanyService interface {
	// GetCompany returns the company with its timezone.
	GetCompany(ctx context.Context, companyID string) (Company, error)

	// GetPolicy returns the stored policy or the defaults when none exists.
	GetPolicy(ctx context.Context, companyID string) (DeductionPolicy, error)

	// UpdatePolicy applies a partial update and persists the result.
	UpdatePolicy(ctx context.Context, companyID string, req UpdateDeductionPolicyRequest) (DeductionPolicyResponse, error)
}
