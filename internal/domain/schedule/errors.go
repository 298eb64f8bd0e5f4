package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrShiftNotFound             = errors.New("shift not found")
	ErrShiftAlreadyAssigned      = errors.New("a shift is already assigned for this employee and date")
	ErrInvalidShiftConfiguration = errors.New("invalid shift configuration")
)

// InvalidShiftConfigurationError reports a shift whose overnight flag disagrees with its times.
type InvalidShiftConfigurationError struct {
	Start   TimeOfDay
	End     TimeOfDay
	NextDay bool
	Reason  string
}

func (e *InvalidShiftConfigurationError) Error() string {
	return fmt.Sprintf("invalid shift configuration %s-%s (next_day=%t): %s", e.Start, e.End, e.NextDay, e.Reason)
}

func (e *InvalidShiftConfigurationError) Unwrap() error {
	return ErrInvalidShiftConfiguration
}
