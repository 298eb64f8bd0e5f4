package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func mustTime(s string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDataIDs holds IDs of all seeded demo data
type SeededDataIDs struct {
	CompanyID string

	// Employee IDs by employee code
	EmployeeIDs map[string]string // e.g., "EMP-001" -> "uuid"

	// Shift IDs by name
	ShiftIDs map[string]string // e.g., "Night Shift" -> "uuid"
}

// NewSeededDataIDs creates a new SeededDataIDs with initialized maps
func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		EmployeeIDs: make(map[string]string),
		ShiftIDs:    make(map[string]string),
	}
}

// ==========================================
// DEFAULT DEDUCTION POLICY
// ==========================================

// GetDemoDeductionPolicy returns the default policy with a non-zero per-minute rate
func GetDemoDeductionPolicy(companyID string) company.DeductionPolicy {
	policy := company.DefaultDeductionPolicy(companyID)
	policy.LateDeductionRate = decimal.NewFromInt(1000) // per minute
	policy.EarlyCheckoutEnabled = true
	policy.EarlyCheckoutThresholdMinutes = 15
	return policy
}

// ==========================================
// DEFAULT SHIFTS
// ==========================================

// ShiftDefinition describes a shift before it is validated
type ShiftDefinition struct {
	Name            string
	Start           string
	End             string
	BreakMinutes    int
	NextDayCheckout bool
}

// GetDefaultShifts returns the standard, afternoon and night shifts
func GetDefaultShifts() []ShiftDefinition {
	return []ShiftDefinition{
		{Name: "Standard Office Hours", Start: "09:00", End: "18:00", BreakMinutes: 60},
		{Name: "Afternoon Shift", Start: "14:00", End: "22:00", BreakMinutes: 60},
		{Name: "Night Shift", Start: "22:00", End: "06:00", BreakMinutes: 60, NextDayCheckout: true}, // Clock out is on the next day
	}
}

// Build validates the definition and returns the shift for companyID.
func (d ShiftDefinition) Build(companyID string) (schedule.Shift, error) {
	shift, err := schedule.NewShift(mustTime(d.Start), mustTime(d.End), d.BreakMinutes, d.NextDayCheckout)
	if err != nil {
		return schedule.Shift{}, fmt.Errorf("shift %q: %w", d.Name, err)
	}
	shift.CompanyID = companyID
	shift.Name = d.Name
	return shift, nil
}

// ==========================================
// DEFAULT EMPLOYEES
// ==========================================

// GetDemoEmployees returns a small roster covering the override cases
func GetDemoEmployees(companyID string) []employee.Employee {
	salary := decimal.NewFromInt(4_400_000)
	optOut := false
	return []employee.Employee{
		{CompanyID: companyID, EmployeeCode: "EMP-001", FullName: "Ayu Lestari", EmploymentStatus: employee.EmploymentStatusActive, BaseSalary: decPtr(salary)},
		{CompanyID: companyID, EmployeeCode: "EMP-002", FullName: "Budi Santoso", EmploymentStatus: employee.EmploymentStatusActive, BaseSalary: decPtr(salary), LateDeductionRate: decPtr(decimal.NewFromInt(2000))},
		{CompanyID: companyID, EmployeeCode: "EMP-003", FullName: "Citra Dewi", EmploymentStatus: employee.EmploymentStatusActive, BaseSalary: decPtr(salary), EnableAutoDeduction: &optOut},
		{CompanyID: companyID, EmployeeCode: "EMP-004", FullName: "Dimas Pratama", EmploymentStatus: employee.EmploymentStatusActive, BaseSalary: decPtr(salary)},
	}
}

// ==========================================
// SEEDING
// ==========================================

type Repositories struct {
	Companies company.CompanyRepository
	Policies  company.PolicyRepository
	Employees employee.EmployeeRepository
	Shifts    schedule.ShiftRepository
}

// SeedDemoCompany creates a company with its policy, shifts and employees in one
// transaction. EMP-004 works the night shift on each of the next days.
func SeedDemoCompany(ctx context.Context, tx database.Transactor, repos Repositories, name, timezone string, from time.Time, days int) (*SeededDataIDs, error) {
	ids := NewSeededDataIDs()

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := repos.Companies.Create(ctx, company.Company{Name: name, Timezone: timezone})
		if err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		ids.CompanyID = c.ID

		if _, err := repos.Policies.UpsertDeductionPolicy(ctx, GetDemoDeductionPolicy(c.ID)); err != nil {
			return fmt.Errorf("create deduction policy: %w", err)
		}

		for _, def := range GetDefaultShifts() {
			shift, err := def.Build(c.ID)
			if err != nil {
				return err
			}
			created, err := repos.Shifts.CreateShift(ctx, shift)
			if err != nil {
				return fmt.Errorf("create shift %q: %w", def.Name, err)
			}
			ids.ShiftIDs[def.Name] = created.ID
		}

		for _, e := range GetDemoEmployees(c.ID) {
			created, err := repos.Employees.Create(ctx, e)
			if err != nil {
				return fmt.Errorf("create employee %s: %w", e.EmployeeCode, err)
			}
			ids.EmployeeIDs[e.EmployeeCode] = created.ID
		}

		loc := c.Location()
		local := from.In(loc)
		start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		for i := 0; i < days; i++ {
			_, err := repos.Shifts.Assign(ctx, schedule.ShiftAssignment{
				CompanyID:  c.ID,
				EmployeeID: ids.EmployeeIDs["EMP-004"],
				Date:       start.AddDate(0, 0, i),
				ShiftID:    ids.ShiftIDs["Night Shift"],
			})
			if err != nil {
				return fmt.Errorf("assign night shift: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
