package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	err := r.s.write(ctx, func(t *tables) error {
		for _, existing := range t.attendances {
			if existing.CompanyID == a.CompanyID && existing.EmployeeID == a.EmployeeID &&
				dateKey(existing.Date) == dateKey(a.Date) {
				return attendance.ErrAlreadyCheckedIn
			}
		}
		if a.ID == "" {
			a.ID = newID()
		}
		now := r.s.now().UTC()
		a.CreatedAt, a.UpdatedAt = now, now
		t.attendances[a.ID] = a
		return nil
	})
	return a, err
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	var (
		a  attendance.Attendance
		ok bool
	)
	r.s.read(func(t *tables) { a, ok = t.attendances[id] })
	if !ok || a.CompanyID != companyID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, companyID string, employeeID string, date time.Time) (*attendance.Attendance, error) {
	var result *attendance.Attendance
	r.s.read(func(t *tables) {
		for _, a := range t.attendances {
			if a.CompanyID == companyID && a.EmployeeID == employeeID && dateKey(a.Date) == dateKey(date) {
				result = &a
				return
			}
		}
	})
	return result, nil
}

func (r *attendanceRepository) GetOpenSession(ctx context.Context, companyID string, employeeID string) (*attendance.Attendance, error) {
	var result *attendance.Attendance
	r.s.read(func(t *tables) {
		for _, a := range t.attendances {
			if a.CompanyID != companyID || a.EmployeeID != employeeID || !a.IsOpen() {
				continue
			}
			if result == nil || a.CheckIn.After(*result.CheckIn) {
				a := a
				result = &a
			}
		}
	})
	return result, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	return r.s.write(ctx, func(t *tables) error {
		existing, ok := t.attendances[a.ID]
		if !ok || existing.CompanyID != a.CompanyID {
			return attendance.ErrAttendanceNotFound
		}
		a.CreatedAt = existing.CreatedAt
		a.UpdatedAt = r.s.now().UTC()
		t.attendances[a.ID] = a
		return nil
	})
}

func (r *attendanceRepository) ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	r.s.read(func(t *tables) {
		for _, a := range t.attendances {
			if a.CompanyID == companyID && a.EmployeeID == employeeID && !a.Date.Before(from) && a.Date.Before(to) {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
