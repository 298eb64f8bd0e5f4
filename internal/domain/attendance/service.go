package attendance

import (
	"context"
	"time"
)

// AttendanceService turns check-in and check-out events into classified records
// and the deductions they cause.
type AttendanceService interface {
	OnCheckIn(ctx context.Context, companyID string, employeeID string, instant time.Time) (CheckInResult, error)

	// OnCheckOut resolves the most recent open record, which may belong to the previous calendar date.
	OnCheckOut(ctx context.Context, companyID string, employeeID string, instant time.Time) (CheckOutResult, error)

	// GetDailyAttendance synthesizes an unsaved ABSENT record when there was no check-in.
	GetDailyAttendance(ctx context.Context, companyID string, employeeID string, date time.Time) (Attendance, error)
}
