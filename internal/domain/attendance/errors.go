package attendance

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAlreadyCheckedIn   = errors.New("you have already checked in today")
	ErrNotCheckedIn       = errors.New("no open check-in found")
	ErrCheckOutBeforeIn   = errors.New("check-out time is before check-in time")
)

// DuplicateAttendanceError is returned when a check-in collides with an existing record.
type DuplicateAttendanceError struct {
	EmployeeID   string
	Date         time.Time
	AttendanceID string
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("employee %s already has attendance %s for %s",
		e.EmployeeID, e.AttendanceID, e.Date.Format("2006-01-02"))
}

func (e *DuplicateAttendanceError) Unwrap() error {
	return ErrAlreadyCheckedIn
}

// NoOpenAttendanceError is returned when a check-out finds no open record within the lookback window.
type NoOpenAttendanceError struct {
	EmployeeID string
	Since      time.Time
}

func (e *NoOpenAttendanceError) Error() string {
	return fmt.Sprintf("employee %s has no open attendance since %s",
		e.EmployeeID, e.Since.UTC().Format(time.RFC3339))
}

func (e *NoOpenAttendanceError) Unwrap() error {
	return ErrNotCheckedIn
}
