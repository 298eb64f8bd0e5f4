package schedule

import (
	"context"
	"time"
)

// ShiftRepository is the Shift Assignment Store.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift Shift) (Shift, error)
	GetShiftByID(ctx context.Context, id string, companyID string) (Shift, error)

	// Assign returns ErrShiftAlreadyAssigned when the (employee, date) pair is taken.
	Assign(ctx context.Context, assignment ShiftAssignment) (ShiftAssignment, error)

	// GetAssignment performs an exact-match lookup on a company-timezone midnight.
	// It returns (nil, nil) when nothing is assigned.
	GetAssignment(ctx context.Context, companyID string, employeeID string, date time.Time) (*Shift, error)
}
