package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                  string
	CompanyID           string
	EmployeeCode        string
	FullName            string
	EmploymentStatus    EmploymentStatus
	BaseSalary          *decimal.Decimal
	LateDeductionRate   *decimal.Decimal
	EnableAutoDeduction *bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// DeductionOverrides are the per-employee settings that take precedence over company policy.
// A nil field means "use the company setting".
type DeductionOverrides struct {
	EnableAutoDeduction *bool
	LateDeductionRate   *decimal.Decimal
	BaseSalary          *decimal.Decimal
}

func (e Employee) Overrides() DeductionOverrides {
	return DeductionOverrides{
		EnableAutoDeduction: e.EnableAutoDeduction,
		LateDeductionRate:   e.LateDeductionRate,
		BaseSalary:          e.BaseSalary,
	}
}

// ExcludedFromAutoDeduction is true only when the employee explicitly opted out.
func (o DeductionOverrides) ExcludedFromAutoDeduction() bool {
	return o.EnableAutoDeduction != nil && !*o.EnableAutoDeduction
}
