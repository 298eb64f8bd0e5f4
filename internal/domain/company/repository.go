package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
}

// PolicyRepository is the Company Policy Store.
type PolicyRepository interface {
	// GetDeductionPolicy returns ErrPolicyNotFound when the company never saved one.
	GetDeductionPolicy(ctx context.Context, companyID string) (DeductionPolicy, error)
	UpsertDeductionPolicy(ctx context.Context, policy DeductionPolicy) (DeductionPolicy, error)
}
