package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `id, company_id, employee_id, date, shift_id, check_in, check_out,
	scheduled_start, scheduled_end, late_minutes, early_leave_minutes,
	worked_hours, overtime_hours, status, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Date, &a.ShiftID, &a.CheckIn, &a.CheckOut,
		&a.ScheduledStart, &a.ScheduledEnd, &a.LateMinutes, &a.EarlyLeaveMinutes,
		&a.WorkedHours, &a.OvertimeHours, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			company_id, employee_id, date, shift_id, check_in, check_out,
			scheduled_start, scheduled_end, late_minutes, early_leave_minutes,
			worked_hours, overtime_hours, status
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		a.CompanyID, a.EmployeeID, sqlDate(a.Date), a.ShiftID, a.CheckIn, a.CheckOut,
		a.ScheduledStart, a.ScheduledEnd, a.LateMinutes, a.EarlyLeaveMinutes,
		a.WorkedHours, a.OvertimeHours, a.Status,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_attendance_employee_date") {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1 AND company_id = $2`

	a, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, companyID string, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances
		WHERE company_id = $1 AND employee_id = $2 AND date = $3::date`

	a, err := scanAttendance(q.QueryRow(ctx, query, companyID, employeeID, sqlDate(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	return &a, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
// Inside a transaction the row is locked until commit.
func (r *attendanceRepositoryImpl) GetOpenSession(ctx context.Context, companyID string, employeeID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances
		WHERE company_id = $1 AND employee_id = $2 AND check_in IS NOT NULL AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
		FOR UPDATE`

	a, err := scanAttendance(q.QueryRow(ctx, query, companyID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return &a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET
			shift_id = $1, check_in = $2, check_out = $3, scheduled_start = $4, scheduled_end = $5,
			late_minutes = $6, early_leave_minutes = $7, worked_hours = $8, overtime_hours = $9,
			status = $10, updated_at = NOW()
		WHERE id = $11 AND company_id = $12
	`

	tag, err := q.Exec(ctx, query,
		a.ShiftID, a.CheckIn, a.CheckOut, a.ScheduledStart, a.ScheduledEnd,
		a.LateMinutes, a.EarlyLeaveMinutes, a.WorkedHours, a.OvertimeHours,
		a.Status, a.ID, a.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByEmployeePeriod implements attendance.AttendanceRepository. The range is [from, to).
func (r *attendanceRepositoryImpl) ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances
		WHERE company_id = $1 AND employee_id = $2 AND date >= $3::date AND date < $4::date
		ORDER BY date`

	rows, err := q.Query(ctx, query, companyID, employeeID, sqlDate(from), sqlDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
