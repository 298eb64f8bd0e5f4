package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	companyRepo  company.CompanyRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, companyRepo company.CompanyRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
	}
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, companyID string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		CompanyID:           companyID,
		EmployeeCode:        strings.TrimSpace(req.EmployeeCode),
		FullName:            strings.TrimSpace(req.FullName),
		EmploymentStatus:    employee.EmploymentStatusActive,
		BaseSalary:          req.BaseSalary,
		LateDeductionRate:   req.LateDeductionRate,
		EnableAutoDeduction: req.EnableAutoDeduction,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "company_id", companyID, "employee_id", created.ID)
	return employee.NewEmployeeResponse(created), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, companyID string, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, companyID string, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, err := s.employeeRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	total := len(employees)
	from := min((filter.Page-1)*filter.Limit, total)
	to := min(from+filter.Limit, total)

	responses := make([]employee.EmployeeResponse, 0, to-from)
	for _, e := range employees[from:to] {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}

	return employee.ListEmployeeResponse{
		TotalCount: int64(total),
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

// UpdateOverrides implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateOverrides(ctx context.Context, companyID string, id string, req employee.UpdateOverridesRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateOverrides(ctx, id, companyID, req.Overrides()); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee deduction overrides updated", "company_id", companyID, "employee_id", id)
	return employee.NewEmployeeResponse(updated), nil
}
