package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/lock"
	deductionsvc "github.com/cmlabs-hris/hris-deduction-go/internal/service/deduction"
)

type AttendanceServiceImpl struct {
	tx     database.Transactor
	locker lock.Locker
	attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	companyService company.CompanyService
	resolver       schedule.ShiftResolver
	ledger         *deductionsvc.Ledger
	issuer         *deductionsvc.Issuer

	// lookback bounds how old an open record may be and still be closed by a check-out.
	lookback time.Duration
}

// employeeContext is what every event needs before taking the employee lock.
type employeeContext struct {
	employee employee.Employee
	policy   company.DeductionPolicy
	loc      *time.Location
}

func (s *AttendanceServiceImpl) loadContext(ctx context.Context, companyID string, employeeID string) (employeeContext, error) {
	comp, err := s.companyService.GetCompany(ctx, companyID)
	if err != nil {
		return employeeContext{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return employeeContext{}, err
	}
	if emp.EmploymentStatus != employee.EmploymentStatusActive {
		return employeeContext{}, employee.ErrEmployeeInactive
	}

	policy, err := s.companyService.GetPolicy(ctx, companyID)
	if err != nil {
		return employeeContext{}, err
	}

	return employeeContext{employee: emp, policy: policy, loc: comp.Location()}, nil
}

// OnCheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) OnCheckIn(ctx context.Context, companyID string, employeeID string, instant time.Time) (attendance.CheckInResult, error) {
	ec, err := s.loadContext(ctx, companyID, employeeID)
	if err != nil {
		return attendance.CheckInResult{}, err
	}

	release, err := s.locker.Acquire(ctx, lock.AttendanceKey(employeeID))
	if err != nil {
		return attendance.CheckInResult{}, err
	}
	defer release()

	var result attendance.CheckInResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		date, resolved, err := s.workDay(ctx, companyID, employeeID, instant, ec.loc)
		if err != nil {
			return err
		}

		if err := s.closeStaleSession(ctx, companyID, employeeID, date, instant); err != nil {
			return err
		}

		existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, companyID, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance by date: %w", err)
		}
		if existing != nil {
			return &attendance.DuplicateAttendanceError{EmployeeID: employeeID, Date: date, AttendanceID: existing.ID}
		}

		start, end := resolved.Shift.Bounds(date, ec.loc)
		cls := ClassifyCheckIn(start, instant, ec.policy.GracePeriodMinutes)

		checkIn := instant.UTC()
		startUTC, endUTC := start.UTC(), end.UTC()
		record := attendance.Attendance{
			CompanyID:      companyID,
			EmployeeID:     employeeID,
			Date:           date,
			CheckIn:        &checkIn,
			ScheduledStart: &startUTC,
			ScheduledEnd:   &endUTC,
			LateMinutes:    cls.LateMinutes,
			Status:         cls.Status,
		}
		if !resolved.UsedDefault {
			record.ShiftID = &resolved.Shift.ID
		}

		created, err := s.AttendanceRepository.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		result = attendance.CheckInResult{Attendance: created, UsedDefault: resolved.UsedDefault}

		if cls.LateMinutes == 0 {
			return nil
		}
		summary, err := s.applyLateness(ctx, ec, created)
		if err != nil {
			return err
		}
		result.Deduction = summary
		return nil
	})
	if err != nil {
		return attendance.CheckInResult{}, err
	}

	slog.Info("employee checked in",
		"company_id", companyID,
		"employee_id", employeeID,
		"attendance_id", result.Attendance.ID,
		"status", result.Attendance.Status,
		"late_minutes", result.Attendance.LateMinutes,
	)
	return result, nil
}

// workDay attributes a check-in to the calendar date whose shift it belongs to.
// An instant before the end of the previous day's overnight shift belongs to that shift.
func (s *AttendanceServiceImpl) workDay(ctx context.Context, companyID string, employeeID string, instant time.Time, loc *time.Location) (time.Time, schedule.ResolvedShift, error) {
	date := CalendarDate(instant, loc)

	prevDate := date.AddDate(0, 0, -1)
	prev, err := s.resolver.Resolve(ctx, companyID, employeeID, prevDate)
	if err != nil {
		return time.Time{}, schedule.ResolvedShift{}, err
	}
	if prev.Shift.IsOvernight() {
		if _, end := prev.Shift.Bounds(prevDate, loc); instant.Before(end) {
			return prevDate, prev, nil
		}
	}

	resolved, err := s.resolver.Resolve(ctx, companyID, employeeID, date)
	if err != nil {
		return time.Time{}, schedule.ResolvedShift{}, err
	}
	return date, resolved, nil
}

// closeStaleSession rejects a check-in while the session for the same work day, or
// one whose shift has not ended, is still open. Older open sessions are closed at
// their scheduled end.
func (s *AttendanceServiceImpl) closeStaleSession(ctx context.Context, companyID string, employeeID string, date time.Time, instant time.Time) error {
	open, err := s.AttendanceRepository.GetOpenSession(ctx, companyID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to get open session: %w", err)
	}
	if open == nil {
		return nil
	}
	if SameDate(open.Date, date) || (open.ScheduledEnd != nil && instant.Before(*open.ScheduledEnd)) {
		return &attendance.DuplicateAttendanceError{EmployeeID: employeeID, Date: open.Date, AttendanceID: open.ID}
	}

	closeAt := *open.CheckIn
	if open.ScheduledEnd != nil && open.ScheduledEnd.After(closeAt) {
		closeAt = *open.ScheduledEnd
	}
	open.CheckOut = &closeAt
	open.WorkedHours = WorkedHours(*open.CheckIn, closeAt, 0)
	open.Status = attendance.StatusAutoClosed
	if err := s.AttendanceRepository.Update(ctx, *open); err != nil {
		return fmt.Errorf("failed to auto-close attendance: %w", err)
	}

	slog.Warn("auto-closed stale attendance session",
		"attendance_id", open.ID,
		"employee_id", employeeID,
		"closed_at", closeAt,
	)
	return nil
}

// applyLateness runs the calculator against the month's balance, updates the ledger
// and issues a deduction when there is an amount to charge.
func (s *AttendanceServiceImpl) applyLateness(ctx context.Context, ec employeeContext, record attendance.Attendance) (*attendance.DeductionSummary, error) {
	month, year := int(record.Date.Month()), record.Date.Year()

	balance, err := s.ledger.GetOrCreate(ctx, record.CompanyID, record.EmployeeID, month, year)
	if err != nil {
		return nil, err
	}

	b, err := deductionsvc.CalculateLate(deductionsvc.LateInput{
		LateMinutes: record.LateMinutes,
		Balance:     balance,
		Policy:      ec.policy,
		Overrides:   ec.employee.Overrides(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate late deduction: %w", err)
	}
	if b.Skipped() {
		slog.Info("late deduction skipped",
			"employee_id", record.EmployeeID,
			"attendance_id", record.ID,
			"reason", b.SkipReason,
		)
		return newDeductionSummary(b, nil), nil
	}

	if _, err := s.ledger.Apply(ctx, balance, deduction.EntryFromBreakdown(b)); err != nil {
		return nil, err
	}
	if !b.TotalDeduction.IsPositive() {
		return newDeductionSummary(b, nil), nil
	}

	d, err := s.issuer.Issue(ctx, deductionsvc.IssueInput{
		CompanyID:     record.CompanyID,
		EmployeeID:    record.EmployeeID,
		AttendanceID:  record.ID,
		Breakdown:     b,
		Month:         month,
		Year:          year,
		RequireReview: ec.policy.RequireReview,
	})
	if err != nil {
		return nil, err
	}
	return newDeductionSummary(b, &d), nil
}

// OnCheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) OnCheckOut(ctx context.Context, companyID string, employeeID string, instant time.Time) (attendance.CheckOutResult, error) {
	ec, err := s.loadContext(ctx, companyID, employeeID)
	if err != nil {
		return attendance.CheckOutResult{}, err
	}

	release, err := s.locker.Acquire(ctx, lock.AttendanceKey(employeeID))
	if err != nil {
		return attendance.CheckOutResult{}, err
	}
	defer release()

	var result attendance.CheckOutResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		since := instant.Add(-s.lookback)
		open, err := s.AttendanceRepository.GetOpenSession(ctx, companyID, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if open == nil || open.CheckIn.Before(since) {
			return &attendance.NoOpenAttendanceError{EmployeeID: employeeID, Since: since}
		}
		if instant.Before(*open.CheckIn) {
			return attendance.ErrCheckOutBeforeIn
		}

		resolved, err := s.resolver.Resolve(ctx, companyID, employeeID, open.Date)
		if err != nil {
			return err
		}
		_, end := resolved.Shift.Bounds(open.Date, ec.loc)
		if open.ScheduledEnd != nil {
			end = *open.ScheduledEnd
		}

		cls := ClassifyCheckOut(open.Status, end, instant)
		checkOut := instant.UTC()
		open.CheckOut = &checkOut
		open.EarlyLeaveMinutes = cls.EarlyLeaveMinutes
		open.Status = cls.Status
		open.WorkedHours = WorkedHours(*open.CheckIn, instant, resolved.Shift.BreakDurationMinutes)
		open.OvertimeHours = OvertimeHours(end, instant)

		if err := s.AttendanceRepository.Update(ctx, *open); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		result = attendance.CheckOutResult{Attendance: *open}

		if cls.EarlyLeaveMinutes == 0 {
			return nil
		}
		summary, err := s.applyEarlyLeave(ctx, ec, *open)
		if err != nil {
			return err
		}
		result.Deduction = summary
		return nil
	})
	if err != nil {
		return attendance.CheckOutResult{}, err
	}

	slog.Info("employee checked out",
		"company_id", companyID,
		"employee_id", employeeID,
		"attendance_id", result.Attendance.ID,
		"status", result.Attendance.Status,
		"early_leave_minutes", result.Attendance.EarlyLeaveMinutes,
	)
	return result, nil
}

func (s *AttendanceServiceImpl) applyEarlyLeave(ctx context.Context, ec employeeContext, record attendance.Attendance) (*attendance.DeductionSummary, error) {
	b, err := deductionsvc.CalculateEarlyLeave(deductionsvc.EarlyLeaveInput{
		EarlyMinutes: record.EarlyLeaveMinutes,
		Policy:       ec.policy,
		Overrides:    ec.employee.Overrides(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate early leave deduction: %w", err)
	}
	if b.Skipped() || !b.TotalDeduction.IsPositive() {
		return newDeductionSummary(b, nil), nil
	}

	d, err := s.issuer.Issue(ctx, deductionsvc.IssueInput{
		CompanyID:     record.CompanyID,
		EmployeeID:    record.EmployeeID,
		AttendanceID:  record.ID,
		Breakdown:     b,
		Month:         int(record.Date.Month()),
		Year:          record.Date.Year(),
		RequireReview: ec.policy.RequireReview,
	})
	if err != nil {
		return nil, err
	}
	return newDeductionSummary(b, &d), nil
}

// GetDailyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyAttendance(ctx context.Context, companyID string, employeeID string, date time.Time) (attendance.Attendance, error) {
	comp, err := s.companyService.GetCompany(ctx, companyID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	loc := comp.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, companyID, employeeID, day)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	if record != nil {
		return *record, nil
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID, companyID); err != nil {
		return attendance.Attendance{}, err
	}
	return attendance.Attendance{
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Date:       day,
		Status:     attendance.StatusAbsent,
	}, nil
}

func newDeductionSummary(b deduction.Breakdown, d *deduction.Deduction) *attendance.DeductionSummary {
	summary := &attendance.DeductionSummary{
		Type:            string(b.Type),
		SkipReason:      string(b.SkipReason),
		DeductMinutes:   b.DeductMinutes,
		UseGraceMinutes: b.UseGraceMinutes,
		Multiplier:      b.Multiplier,
		IsCapped:        b.IsCapped,
		TotalDeduction:  b.TotalDeduction,
		Notes:           b.Describe(),
	}
	if d != nil {
		status := string(d.Status)
		summary.DeductionID = &d.ID
		summary.Status = &status
	}
	return summary
}

func NewAttendanceService(
	tx database.Transactor,
	locker lock.Locker,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	companyService company.CompanyService,
	resolver schedule.ShiftResolver,
	ledger *deductionsvc.Ledger,
	issuer *deductionsvc.Issuer,
	lookback time.Duration,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		locker:               locker,
		AttendanceRepository: attendanceRepo,
		employeeRepo:         employeeRepo,
		companyService:       companyService,
		resolver:             resolver,
		ledger:               ledger,
		issuer:               issuer,
		lookback:             lookback,
	}
}
