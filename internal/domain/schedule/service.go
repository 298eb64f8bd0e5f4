package schedule

import (
	"context"
	"time"
)

// ShiftResolver returns the shift that applies to an employee on a calendar date.
// It never fails because of a missing assignment; the default schedule is used instead.
type ShiftResolver interface {
	Resolve(ctx context.Context, companyID string, employeeID string, date time.Time) (ResolvedShift, error)
}

type ScheduleService interface {
	CreateShift(ctx context.Context, companyID string, req CreateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, companyID string, id string) (ShiftResponse, error)

	// AssignShift writes every date of the request in one transaction; any taken date rejects the whole request.
	AssignShift(ctx context.Context, companyID string, req AssignShiftRequest) (AssignmentResponse, error)
}
