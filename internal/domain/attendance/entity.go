package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent    Status = "PRESENT"
	StatusLate       Status = "LATE"
	StatusAbsent     Status = "ABSENT"
	StatusOnLeave    Status = "ON_LEAVE"
	StatusEarlyLeave Status = "EARLY_LEAVE"
	StatusAutoClosed Status = "AUTO_CLOSED"
)

// Attendance is one record per employee and calendar date.
// Date is the company-timezone midnight of the check-in day.
type Attendance struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	Date              time.Time
	ShiftID           *string
	CheckIn           *time.Time
	CheckOut          *time.Time
	ScheduledStart    *time.Time
	ScheduledEnd      *time.Time
	LateMinutes       int
	EarlyLeaveMinutes int
	WorkedHours       float64
	OvertimeHours     float64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOpen reports whether the record has a check-in without a check-out.
func (a Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}
