package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
)

// Classification is the outcome of comparing an event against its shift boundary.
type Classification struct {
	Status            attendance.Status
	LateMinutes       int
	EarlyLeaveMinutes int
}

// LateMinutes returns whole minutes between boundary and actual. Arrivals up to
// boundary+grace count as on time, but once outside the tolerance the minutes are
// measured from boundary itself.
func LateMinutes(boundary, actual time.Time, graceMinutes int) int {
	if !actual.After(boundary.Add(time.Duration(graceMinutes) * time.Minute)) {
		return 0
	}
	return wholeMinutes(actual.Sub(boundary))
}

// EarlyLeaveMinutes returns whole minutes between actual and the shift end when actual is before it.
func EarlyLeaveMinutes(boundary, actual time.Time) int {
	if !actual.Before(boundary) {
		return 0
	}
	return wholeMinutes(boundary.Sub(actual))
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// ClassifyCheckIn tags a check-in as PRESENT or LATE.
func ClassifyCheckIn(shiftStart, actual time.Time, graceMinutes int) Classification {
	late := LateMinutes(shiftStart, actual, graceMinutes)
	if late > 0 {
		return Classification{Status: attendance.StatusLate, LateMinutes: late}
	}
	return Classification{Status: attendance.StatusPresent}
}

// ClassifyCheckOut keeps a LATE status and otherwise marks early departures as EARLY_LEAVE.
func ClassifyCheckOut(current attendance.Status, shiftEnd, actual time.Time) Classification {
	early := EarlyLeaveMinutes(shiftEnd, actual)
	status := current
	if early > 0 && current == attendance.StatusPresent {
		status = attendance.StatusEarlyLeave
	}
	return Classification{Status: status, EarlyLeaveMinutes: early}
}

// CalendarDate normalizes an instant to midnight of its calendar day in loc.
func CalendarDate(instant time.Time, loc *time.Location) time.Time {
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether two calendar dates fall on the same day. Each date is read
// in its own location, so a stored UTC date matches the company-local midnight.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// WorkedHours is the time between check-in and check-out minus the break, in hours rounded to cents.
func WorkedHours(checkIn, checkOut time.Time, breakMinutes int) float64 {
	d := checkOut.Sub(checkIn) - time.Duration(breakMinutes)*time.Minute
	if d < 0 {
		return 0
	}
	return roundHours(d)
}

// OvertimeHours is the time worked past the shift end.
func OvertimeHours(shiftEnd, checkOut time.Time) float64 {
	if !checkOut.After(shiftEnd) {
		return 0
	}
	return roundHours(checkOut.Sub(shiftEnd))
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
