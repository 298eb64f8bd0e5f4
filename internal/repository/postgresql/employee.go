package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, company_id, employee_code, full_name, employment_status,
	base_salary, late_deduction_rate, enable_auto_deduction, created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.EmploymentStatus,
		&e.BaseSalary, &e.LateDeductionRate, &e.EnableAutoDeduction, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	return e, err
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	status := newEmployee.EmploymentStatus
	if status == "" {
		status = employee.EmploymentStatusActive
	}

	query := `
		INSERT INTO employees (
			company_id, employee_code, full_name, employment_status,
			base_salary, late_deduction_rate, enable_auto_deduction
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.CompanyID, newEmployee.EmployeeCode, newEmployee.FullName, status,
		newEmployee.BaseSalary, newEmployee.LateDeductionRate, newEmployee.EnableAutoDeduction,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_employee_code") {
			return employee.Employee{}, fmt.Errorf("%w: %s", employee.ErrEmployeeCodeExists, newEmployee.EmployeeCode)
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return e, nil
}

// ListByCompany implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY full_name`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// GetOverrides implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetOverrides(ctx context.Context, id string, companyID string) (employee.DeductionOverrides, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT enable_auto_deduction, late_deduction_rate, base_salary
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	var o employee.DeductionOverrides
	err := q.QueryRow(ctx, query, id, companyID).Scan(&o.EnableAutoDeduction, &o.LateDeductionRate, &o.BaseSalary)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.DeductionOverrides{}, employee.ErrEmployeeNotFound
		}
		return employee.DeductionOverrides{}, fmt.Errorf("failed to get employee overrides: %w", err)
	}
	return o, nil
}

// UpdateOverrides implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateOverrides(ctx context.Context, id string, companyID string, overrides employee.DeductionOverrides) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET enable_auto_deduction = $1, late_deduction_rate = $2, base_salary = $3, updated_at = NOW()
		WHERE id = $4 AND company_id = $5 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query, overrides.EnableAutoDeduction, overrides.LateDeductionRate, overrides.BaseSalary, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update employee overrides: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
