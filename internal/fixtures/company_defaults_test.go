package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultShifts_AreValid(t *testing.T) {
	for _, def := range GetDefaultShifts() {
		shift, err := def.Build("company")
		require.NoError(t, err, def.Name)
		assert.Equal(t, def.NextDayCheckout, shift.IsOvernight(), def.Name)
	}
}

func TestGetDemoDeductionPolicy_IsValid(t *testing.T) {
	assert.NoError(t, GetDemoDeductionPolicy("company").Validate())
}

func TestSeedDemoCompany(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repositories{
		Companies: memory.NewCompanyRepository(store),
		Policies:  memory.NewPolicyRepository(store),
		Employees: memory.NewEmployeeRepository(store),
		Shifts:    memory.NewShiftRepository(store),
	}

	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ids, err := SeedDemoCompany(ctx, store, repos, "Demo", "Asia/Jakarta", from, 3)
	require.NoError(t, err)

	employees, err := repos.Employees.ListByCompany(ctx, ids.CompanyID)
	require.NoError(t, err)
	assert.Len(t, employees, 4)
	assert.Len(t, ids.ShiftIDs, 3)

	policy, err := repos.Policies.GetDeductionPolicy(ctx, ids.CompanyID)
	require.NoError(t, err)
	assert.True(t, policy.LateDeductionRate.IsPositive())

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		date := time.Date(2025, 3, 10+i, 0, 0, 0, 0, jakarta)
		shift, err := repos.Shifts.GetAssignment(ctx, ids.CompanyID, ids.EmployeeIDs["EMP-004"], date)
		require.NoError(t, err)
		require.NotNil(t, shift)
		assert.Equal(t, "Night Shift", shift.Name)
	}
}
