package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	err := r.s.write(ctx, func(t *tables) error {
		for _, existing := range t.employees {
			if existing.CompanyID == e.CompanyID && existing.EmployeeCode == e.EmployeeCode {
				return fmt.Errorf("%w: %s", employee.ErrEmployeeCodeExists, e.EmployeeCode)
			}
		}
		if e.ID == "" {
			e.ID = newID()
		}
		if e.EmploymentStatus == "" {
			e.EmploymentStatus = employee.EmploymentStatusActive
		}
		now := r.s.now().UTC()
		e.CreatedAt, e.UpdatedAt = now, now
		t.employees[e.ID] = e
		return nil
	})
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	var (
		e  employee.Employee
		ok bool
	)
	r.s.read(func(t *tables) { e, ok = t.employees[id] })
	if !ok || e.CompanyID != companyID || e.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) ListByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	r.s.read(func(t *tables) {
		for _, e := range t.employees {
			if e.CompanyID == companyID && e.DeletedAt == nil {
				out = append(out, e)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *employeeRepository) GetOverrides(ctx context.Context, id string, companyID string) (employee.DeductionOverrides, error) {
	e, err := r.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.DeductionOverrides{}, err
	}
	return e.Overrides(), nil
}

func (r *employeeRepository) UpdateOverrides(ctx context.Context, id string, companyID string, o employee.DeductionOverrides) error {
	return r.s.write(ctx, func(t *tables) error {
		e, ok := t.employees[id]
		if !ok || e.CompanyID != companyID || e.DeletedAt != nil {
			return employee.ErrEmployeeNotFound
		}
		e.EnableAutoDeduction = o.EnableAutoDeduction
		e.LateDeductionRate = o.LateDeductionRate
		e.BaseSalary = o.BaseSalary
		e.UpdatedAt = r.s.now().UTC()
		t.employees[id] = e
		return nil
	})
}
