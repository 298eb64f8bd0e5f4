package employee

import "context"

type EmployeeService interface {
	CreateEmployee(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetEmployee(ctx context.Context, companyID string, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, companyID string, filter EmployeeFilter) (ListEmployeeResponse, error)

	// UpdateOverrides takes effect on the next attendance event; issued deductions keep their breakdown.
	UpdateOverrides(ctx context.Context, companyID string, id string, req UpdateOverridesRequest) (EmployeeResponse, error)
}
