package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateEmployeeRequest struct {
	EmployeeCode        string           `json:"employee_code"`
	FullName            string           `json:"full_name"`
	BaseSalary          *decimal.Decimal `json:"base_salary,omitempty"`
	LateDeductionRate   *decimal.Decimal `json:"late_deduction_rate,omitempty"`
	EnableAutoDeduction *bool            `json:"enable_auto_deduction,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	} else if len(r.EmployeeCode) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must not exceed 50 characters",
		})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	errs = append(errs, validateAmounts(r.BaseSalary, r.LateDeductionRate)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateOverridesRequest replaces all three overrides. A null field falls back to the company policy.
type UpdateOverridesRequest struct {
	BaseSalary          *decimal.Decimal `json:"base_salary"`
	LateDeductionRate   *decimal.Decimal `json:"late_deduction_rate"`
	EnableAutoDeduction *bool            `json:"enable_auto_deduction"`
}

func (r *UpdateOverridesRequest) Validate() error {
	if errs := validateAmounts(r.BaseSalary, r.LateDeductionRate); len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpdateOverridesRequest) Overrides() DeductionOverrides {
	return DeductionOverrides{
		EnableAutoDeduction: r.EnableAutoDeduction,
		LateDeductionRate:   r.LateDeductionRate,
		BaseSalary:          r.BaseSalary,
	}
}

// EmployeeFilter pages through a company's employees ordered by full name.
type EmployeeFilter struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Page < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be at least 1",
		})
	}
	if f.Limit < 1 || f.Limit > MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAmounts(baseSalary, rate *decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if baseSalary != nil && baseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must not be negative",
		})
	}
	if rate != nil && rate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "late_deduction_rate",
			Message: "late_deduction_rate must not be negative",
		})
	}
	return errs
}

// ========================================
// RESPONSE DTOs
// ========================================

type EmployeeResponse struct {
	ID                  string           `json:"id"`
	EmployeeCode        string           `json:"employee_code"`
	FullName            string           `json:"full_name"`
	EmploymentStatus    string           `json:"employment_status"`
	BaseSalary          *decimal.Decimal `json:"base_salary"`
	LateDeductionRate   *decimal.Decimal `json:"late_deduction_rate"`
	EnableAutoDeduction *bool            `json:"enable_auto_deduction"`
	CreatedAt           string           `json:"created_at"`
	UpdatedAt           string           `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                  e.ID,
		EmployeeCode:        e.EmployeeCode,
		FullName:            e.FullName,
		EmploymentStatus:    string(e.EmploymentStatus),
		BaseSalary:          e.BaseSalary,
		LateDeductionRate:   e.LateDeductionRate,
		EnableAutoDeduction: e.EnableAutoDeduction,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
