package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
)

type shiftRepository struct {
	s *Store
}

func NewShiftRepository(s *Store) schedule.ShiftRepository {
	return &shiftRepository{s: s}
}

func (r *shiftRepository) CreateShift(ctx context.Context, shift schedule.Shift) (schedule.Shift, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if shift.ID == "" {
			shift.ID = newID()
		}
		now := r.s.now().UTC()
		shift.CreatedAt, shift.UpdatedAt = now, now
		t.shifts[shift.ID] = shift
		return nil
	})
	return shift, err
}

func (r *shiftRepository) GetShiftByID(ctx context.Context, id string, companyID string) (schedule.Shift, error) {
	var (
		shift schedule.Shift
		ok    bool
	)
	r.s.read(func(t *tables) { shift, ok = t.shifts[id] })
	if !ok || shift.CompanyID != companyID {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return shift, nil
}

func (r *shiftRepository) Assign(ctx context.Context, a schedule.ShiftAssignment) (schedule.ShiftAssignment, error) {
	err := r.s.write(ctx, func(t *tables) error {
		shift, ok := t.shifts[a.ShiftID]
		if !ok || shift.CompanyID != a.CompanyID {
			return schedule.ErrShiftNotFound
		}
		k := assignmentKey{companyID: a.CompanyID, employeeID: a.EmployeeID, date: dateKey(a.Date)}
		if _, taken := t.assignments[k]; taken {
			return schedule.ErrShiftAlreadyAssigned
		}
		if a.ID == "" {
			a.ID = newID()
		}
		a.CreatedAt = r.s.now().UTC()
		t.assignments[k] = a
		return nil
	})
	return a, err
}

func (r *shiftRepository) GetAssignment(ctx context.Context, companyID string, employeeID string, date time.Time) (*schedule.Shift, error) {
	var result *schedule.Shift
	r.s.read(func(t *tables) {
		a, ok := t.assignments[assignmentKey{companyID: companyID, employeeID: employeeID, date: dateKey(date)}]
		if !ok {
			return
		}
		if shift, ok := t.shifts[a.ShiftID]; ok {
			result = &shift
		}
	})
	return result, nil
}
