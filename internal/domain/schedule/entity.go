package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a local wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// On places the time of day on the given calendar date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// ShiftEnd is the end of a shift relative to the day the shift starts.
// DayOffset is 1 for shifts that end after midnight.
type ShiftEnd struct {
	TimeOfDay
	DayOffset int
}

type Shift struct {
	ID                   string
	CompanyID            string
	Name                 string
	Start                TimeOfDay
	End                  ShiftEnd
	BreakDurationMinutes int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewShift builds a shift and checks that the next-day flag agrees with the times.
func NewShift(start, end TimeOfDay, breakMinutes int, nextDayCheckout bool) (Shift, error) {
	if breakMinutes < 0 {
		return Shift{}, &InvalidShiftConfigurationError{Start: start, End: end, NextDay: nextDayCheckout, Reason: "break duration must not be negative"}
	}

	switch {
	case nextDayCheckout && end.minutes() > start.minutes():
		return Shift{}, &InvalidShiftConfigurationError{Start: start, End: end, NextDay: nextDayCheckout, Reason: "next-day checkout flagged but end is after start"}
	case !nextDayCheckout && end.minutes() <= start.minutes():
		return Shift{}, &InvalidShiftConfigurationError{Start: start, End: end, NextDay: nextDayCheckout, Reason: "end must be after start unless the shift ends on the next day"}
	}

	offset := 0
	if nextDayCheckout {
		offset = 1
	}

	s := Shift{
		Start:                start,
		End:                  ShiftEnd{TimeOfDay: end, DayOffset: offset},
		BreakDurationMinutes: breakMinutes,
	}
	if s.Duration() <= time.Duration(breakMinutes)*time.Minute {
		return Shift{}, &InvalidShiftConfigurationError{Start: start, End: end, NextDay: nextDayCheckout, Reason: "break is longer than the shift"}
	}
	return s, nil
}

// DefaultShift is the 09:00-17:00 schedule used when an employee has no assignment.
func DefaultShift() Shift {
	return Shift{
		Name:  "default",
		Start: TimeOfDay{Hour: 9},
		End:   ShiftEnd{TimeOfDay: TimeOfDay{Hour: 17}},
	}
}

func (s Shift) IsOvernight() bool {
	return s.End.DayOffset > 0
}

// Duration is the nominal length of the shift, break included.
func (s Shift) Duration() time.Duration {
	mins := s.End.DayOffset*24*60 + s.End.minutes() - s.Start.minutes()
	return time.Duration(mins) * time.Minute
}

// Bounds returns the start and end instants of the shift worked on date.
// date must be a calendar date in loc; the end is moved by DayOffset calendar
// days so DST transitions are respected.
func (s Shift) Bounds(date time.Time, loc *time.Location) (start, end time.Time) {
	start = s.Start.On(date, loc)
	end = s.End.On(date.AddDate(0, 0, s.End.DayOffset), loc)
	return start, end
}

// ShiftAssignment maps an employee's calendar date to a shift.
// Date is midnight in the company timezone.
type ShiftAssignment struct {
	ID         string
	CompanyID  string
	EmployeeID string
	Date       time.Time
	ShiftID    string
	CreatedAt  time.Time
}

// ResolvedShift is the shift that applies to a date, and whether it came from the default.
type ResolvedShift struct {
	Shift       Shift
	UsedDefault bool
}

// WithDefault substitutes the default schedule when no shift is assigned.
func WithDefault(assigned *Shift) ResolvedShift {
	if assigned == nil {
		return ResolvedShift{Shift: DefaultShift(), UsedDefault: true}
	}
	return ResolvedShift{Shift: *assigned}
}
