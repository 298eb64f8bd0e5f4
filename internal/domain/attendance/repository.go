package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetByEmployeeAndDate returns nil, nil when the employee has no record for date.
	GetByEmployeeAndDate(ctx context.Context, companyID string, employeeID string, date time.Time) (*Attendance, error)

	// GetOpenSession returns the most recent record without a check-out, or nil, nil.
	GetOpenSession(ctx context.Context, companyID string, employeeID string) (*Attendance, error)

	Update(ctx context.Context, attendance Attendance) error

	// ListByEmployeePeriod returns records with from <= date < to ordered by date.
	ListByEmployeePeriod(ctx context.Context, companyID string, employeeID string, from, to time.Time) ([]Attendance, error)
}
