package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// sqlDate renders a calendar date for DATE columns without any timezone conversion.
func sqlDate(t time.Time) string {
	return t.Format("2006-01-02")
}

const shiftColumns = `s.id, s.company_id, s.name, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
	s.end_day_offset, s.break_duration_minutes, s.created_at, s.updated_at`

func scanShift(row pgx.Row) (schedule.Shift, error) {
	var (
		s          schedule.Shift
		start, end string
	)
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &start, &end,
		&s.End.DayOffset, &s.BreakDurationMinutes, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return schedule.Shift{}, err
	}

	var err error
	if s.Start, err = schedule.ParseTimeOfDay(start); err != nil {
		return schedule.Shift{}, err
	}
	if s.End.TimeOfDay, err = schedule.ParseTimeOfDay(end); err != nil {
		return schedule.Shift{}, err
	}
	return s, nil
}

// CreateShift implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) CreateShift(ctx context.Context, shift schedule.Shift) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH s AS (
			INSERT INTO shifts (company_id, name, start_time, end_time, end_day_offset, break_duration_minutes)
			VALUES ($1, $2, $3::time, $4::time, $5, $6)
			RETURNING *
		)
		SELECT ` + shiftColumns + ` FROM s`

	created, err := scanShift(q.QueryRow(ctx, query,
		shift.CompanyID, shift.Name, shift.Start.String(), shift.End.TimeOfDay.String(),
		shift.End.DayOffset, shift.BreakDurationMinutes,
	))
	if err != nil {
		return schedule.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return created, nil
}

// GetShiftByID implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) GetShiftByID(ctx context.Context, id string, companyID string) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE s.id = $1 AND s.company_id = $2`

	s, err := scanShift(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to get shift by id: %w", err)
	}
	return s, nil
}

// Assign implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) Assign(ctx context.Context, assignment schedule.ShiftAssignment) (schedule.ShiftAssignment, error) {
	q := GetQuerier(ctx, r.db)

	var shiftExists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM shifts WHERE id = $1 AND company_id = $2)`,
		assignment.ShiftID, assignment.CompanyID).Scan(&shiftExists)
	if err != nil {
		return schedule.ShiftAssignment{}, fmt.Errorf("failed to check shift: %w", err)
	}
	if !shiftExists {
		return schedule.ShiftAssignment{}, schedule.ErrShiftNotFound
	}

	query := `
		INSERT INTO shift_assignments (company_id, employee_id, date, shift_id)
		VALUES ($1, $2, $3::date, $4)
		RETURNING id, created_at
	`

	created := assignment
	err = q.QueryRow(ctx, query, assignment.CompanyID, assignment.EmployeeID, sqlDate(assignment.Date), assignment.ShiftID).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_shift_assignment") {
			return schedule.ShiftAssignment{}, schedule.ErrShiftAlreadyAssigned
		}
		return schedule.ShiftAssignment{}, fmt.Errorf("failed to assign shift: %w", err)
	}
	return created, nil
}

// GetAssignment implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) GetAssignment(ctx context.Context, companyID string, employeeID string, date time.Time) (*schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shift_assignments sa
		JOIN shifts s ON s.id = sa.shift_id
		WHERE sa.company_id = $1 AND sa.employee_id = $2 AND sa.date = $3::date
	`

	s, err := scanShift(q.QueryRow(ctx, query, companyID, employeeID, sqlDate(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift assignment: %w", err)
	}
	return &s, nil
}
