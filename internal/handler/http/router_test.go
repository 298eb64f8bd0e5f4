package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-deduction-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-deduction-go/internal/service/attendance"
	serviceCompany "github.com/cmlabs-hris/hris-deduction-go/internal/service/company"
	deductionService "github.com/cmlabs-hris/hris-deduction-go/internal/service/deduction"
	employeeService "github.com/cmlabs-hris/hris-deduction-go/internal/service/employee"
	scheduleService "github.com/cmlabs-hris/hris-deduction-go/internal/service/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	t        *testing.T
	handler  http.Handler
	jwt      jwt.Service
	ids      *fixtures.SeededDataIDs
	owner    string
	manager  string
	employee string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// newTestServer wires the full stack over the memory store with the clock
// fixed at 2025-03-10 09:40 Asia/Jakarta.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 9, 40, 0, 0, jakarta)

	store := memory.NewStore()
	companyRepo := memory.NewCompanyRepository(store)
	policyRepo := memory.NewPolicyRepository(store)
	employeeRepo := memory.NewEmployeeRepository(store)
	shiftRepo := memory.NewShiftRepository(store)
	balanceRepo := memory.NewGraceBalanceRepository(store)
	deductionRepo := memory.NewDeductionRepository(store)

	ids, err := fixtures.SeedDemoCompany(ctx, store, fixtures.Repositories{
		Companies: companyRepo,
		Policies:  policyRepo,
		Employees: employeeRepo,
		Shifts:    shiftRepo,
	}, "Test Company", "Asia/Jakarta", now, 1)
	require.NoError(t, err)

	locker := lock.NewLocalLocker()
	companySvc := serviceCompany.NewCompanyService(companyRepo, policyRepo)
	ledger := deductionService.NewLedger(balanceRepo)
	issuer := deductionService.NewIssuer(store, locker, deductionRepo, ledger)
	attendanceSvc := attendanceService.NewAttendanceService(
		store, locker, memory.NewAttendanceRepository(store), employeeRepo, companySvc,
		scheduleService.NewShiftResolver(shiftRepo), ledger, issuer, 24*time.Hour,
	)
	deductionSvc := deductionService.NewDeductionService(issuer, companySvc, employeeRepo, balanceRepo, deductionRepo)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(
		RouterOptions{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		jwtService,
		&attendanceHandlerImpl{attendanceService: attendanceSvc, now: func() time.Time { return now }},
		NewDeductionHandler(deductionSvc),
		NewCompanyHandler(companySvc),
		NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo, companyRepo)),
		NewScheduleHandler(scheduleService.NewScheduleService(store, shiftRepo, companyRepo, employeeRepo)),
	)

	s := &testServer{t: t, handler: router, jwt: jwtService, ids: ids}
	s.owner = s.token(user.RoleOwner, nil)
	s.manager = s.token(user.RoleManager, nil)
	employeeID := ids.EmployeeIDs["EMP-001"]
	s.employee = s.token(user.RoleEmployee, &employeeID)
	return s
}

func (s *testServer) token(role user.Role, employeeID *string) string {
	s.t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(jwt.AccessClaims{
		UserID:     "user-" + string(role),
		EmployeeID: employeeID,
		CompanyID:  s.ids.CompanyID,
		Role:       role,
	})
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

type checkInData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	LateMinutes      int    `json:"late_minutes"`
	UsedDefaultShift *bool  `json:"used_default_shift"`
	Deduction        *struct {
		DeductionID *string `json:"deduction_id"`
		Type        string  `json:"type"`
		Status      *string `json:"status"`
	} `json:"deduction"`
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsForeignSignature(t *testing.T) {
	s := newTestServer(t)
	other := jwt.NewJWTService("another-secret", "1h")
	token, _, err := other.GenerateAccessToken(jwt.AccessClaims{CompanyID: s.ids.CompanyID, Role: user.RoleOwner})
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/v1/deductions/policy", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckIn_LateIssuesDeduction(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", s.employee, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data checkInData
	decodeData(t, rec, &data)
	assert.Equal(t, "LATE", data.Status)
	assert.Equal(t, 40, data.LateMinutes)
	require.NotNil(t, data.UsedDefaultShift)
	assert.True(t, *data.UsedDefaultShift)
	require.NotNil(t, data.Deduction)
	assert.Equal(t, "LATE", data.Deduction.Type)
	require.NotNil(t, data.Deduction.DeductionID)
	require.NotNil(t, data.Deduction.Status)
	assert.Equal(t, "APPROVED", *data.Deduction.Status)

	rec = s.do(http.MethodPost, "/api/v1/attendance/check-in", s.employee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckIn_EmployeeCannotBackdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", s.employee, map[string]string{
		"instant": "2025-03-10T08:55:00+07:00",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckIn_ManagerActsForEmployee(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", s.manager, map[string]string{
		"employee_id": s.ids.EmployeeIDs["EMP-002"],
		"instant":     "2025-03-10T08:55:00+07:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data checkInData
	decodeData(t, rec, &data)
	assert.Equal(t, "PRESENT", data.Status)
	assert.Nil(t, data.Deduction)
}

func TestCheckIn_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", s.manager, map[string]string{
		"employee_id": "not-a-uuid",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeData(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "employee_id")
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-out", s.employee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDaily(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/attendance/daily?date=10-03-2025", s.employee, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/attendance/daily?date=2025-03-10", s.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data checkInData
	decodeData(t, rec, &data)
	assert.Equal(t, "ABSENT", data.Status)

	other := s.ids.EmployeeIDs["EMP-002"]
	rec = s.do(http.MethodGet, "/api/v1/attendance/daily?date=2025-03-10&employee_id="+other, s.employee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeductionRoutes_ManagerOnly(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/v1/deductions/report?month=3&year=2025",
		"/api/v1/deductions/stats?month=3&year=2025",
		"/api/v1/deductions/policy",
	} {
		rec := s.do(http.MethodGet, path, s.employee, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestReportAndCancel(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/attendance/check-in", s.employee, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var checkIn checkInData
	decodeData(t, rec, &checkIn)
	require.NotNil(t, checkIn.Deduction)
	deductionID := *checkIn.Deduction.DeductionID

	rec = s.do(http.MethodGet, "/api/v1/deductions/report?month=13&year=2025", s.manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/deductions/report?month=3&year=2025", s.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		Employees []struct {
			EmployeeID string `json:"employee_id"`
			Deductions []struct {
				ID string `json:"id"`
			} `json:"deductions"`
		} `json:"employees"`
	}
	decodeData(t, rec, &report)
	var found bool
	for _, e := range report.Employees {
		for _, d := range e.Deductions {
			found = found || d.ID == deductionID
		}
	}
	assert.True(t, found)

	rec = s.do(http.MethodPost, "/api/v1/deductions/"+deductionID+"/cancel", s.manager, map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/deductions/"+deductionID+"/cancel", s.manager, map[string]string{
		"reason": "traffic accident on the toll road",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cancelled struct {
		Status      string  `json:"status"`
		CancelledBy *string `json:"cancelled_by"`
	}
	decodeData(t, rec, &cancelled)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "user-manager", *cancelled.CancelledBy)
}

func TestExportReport(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/deductions/report/export?month=3&year=2025", s.owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "deductions-2025-03.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestPayrollApplied(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/deductions/payroll-applied", s.manager, map[string]int{"month": 3, "year": 2025})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	system := s.token(user.RoleSystem, nil)
	rec = s.do(http.MethodPost, "/api/v1/deductions/payroll-applied", system, map[string]int{"month": 3, "year": 2025})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPolicy_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/deductions/policy", s.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	update := map[string]any{"monthly_grace_minutes": 90, "require_review": true}
	rec = s.do(http.MethodPut, "/api/v1/deductions/policy", s.manager, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/deductions/policy", s.owner, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var policy struct {
		MonthlyGraceMinutes int  `json:"monthly_grace_minutes"`
		RequireReview       bool `json:"require_review"`
	}
	decodeData(t, rec, &policy)
	assert.Equal(t, 90, policy.MonthlyGraceMinutes)
	assert.True(t, policy.RequireReview)

	rec = s.do(http.MethodPut, "/api/v1/deductions/policy", s.owner, map[string]any{"working_days_per_month": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestShiftAssignmentDrivesCheckIn(t *testing.T) {
	s := newTestServer(t)
	employeeID := s.ids.EmployeeIDs["EMP-002"]

	rec := s.do(http.MethodPost, "/api/v1/shifts", s.employee, map[string]any{"name": "Early"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/shifts", s.manager, map[string]any{
		"name": "Early", "start_time": "07:00", "end_time": "15:00", "break_duration_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var shift struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &shift)

	assignment := map[string]any{"employee_id": employeeID, "shift_id": shift.ID, "start_date": "2025-03-10"}
	rec = s.do(http.MethodPost, "/api/v1/shifts/assignments", s.manager, assignment)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/shifts/assignments", s.manager, assignment)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 08:55 is on time for the default shift but 115 minutes late for the early one.
	rec = s.do(http.MethodPost, "/api/v1/attendance/check-in", s.manager, map[string]string{
		"employee_id": employeeID,
		"instant":     "2025-03-10T08:55:00+07:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data checkInData
	decodeData(t, rec, &data)
	assert.Equal(t, "LATE", data.Status)
	assert.Equal(t, 115, data.LateMinutes)
	require.NotNil(t, data.UsedDefaultShift)
	assert.False(t, *data.UsedDefaultShift)
}

func TestEmployeeOverrides(t *testing.T) {
	s := newTestServer(t)
	employeeID := s.ids.EmployeeIDs["EMP-001"]

	rec := s.do(http.MethodGet, "/api/v1/employees", s.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []struct {
		ID string `json:"id"`
	}
	env := decodeData(t, rec, &list)
	assert.Len(t, list, 4)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(4), env.Meta.TotalItems)
	assert.Equal(t, 1, env.Meta.TotalPages)

	rec = s.do(http.MethodGet, "/api/v1/employees?page=2&limit=3", s.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env = decodeData(t, rec, &list)
	assert.Len(t, list, 1)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.Limit)
	assert.Equal(t, 2, env.Meta.TotalPages)

	rec = s.do(http.MethodGet, "/api/v1/employees?limit=500", s.manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	optOut := map[string]any{"enable_auto_deduction": false}
	rec = s.do(http.MethodPut, "/api/v1/employees/"+employeeID+"/deduction-overrides", s.manager, optOut)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/employees/"+employeeID+"/deduction-overrides", s.owner, optOut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/attendance/check-in", s.employee, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data struct {
		Status    string `json:"status"`
		Deduction *struct {
			DeductionID *string `json:"deduction_id"`
			SkipReason  string  `json:"skip_reason"`
		} `json:"deduction"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, "LATE", data.Status)
	require.NotNil(t, data.Deduction)
	assert.Nil(t, data.Deduction.DeductionID)
	assert.Equal(t, "EMPLOYEE_EXCLUDED", data.Deduction.SkipReason)

	rec = s.do(http.MethodPost, "/api/v1/employees", s.manager, map[string]any{"employee_code": "EMP-001", "full_name": "Duplicate"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
