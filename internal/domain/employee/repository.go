package employee

import "context"

// EmployeeRepository is the Employee Profile Store.
// All methods include companyID parameter to prevent cross-company data access.
type EmployeeRepository interface {
	Create(ctx context.Context, employee Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	ListByCompany(ctx context.Context, companyID string) ([]Employee, error)
	GetOverrides(ctx context.Context, id string, companyID string) (DeductionOverrides, error)
	UpdateOverrides(ctx context.Context, id string, companyID string, overrides DeductionOverrides) error
}
