package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLateMinutes(t *testing.T) {
	boundary := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		actual time.Time
		grace  int
		want   int
	}{
		{"early arrival", boundary.Add(-10 * time.Minute), 15, 0},
		{"exactly on time", boundary, 15, 0},
		{"inside grace", boundary.Add(14*time.Minute + 59*time.Second), 15, 0},
		{"exactly at grace limit", boundary.Add(15 * time.Minute), 15, 0},
		{"just past grace measures from boundary", boundary.Add(15*time.Minute + time.Second), 15, 15},
		{"twenty minutes late", boundary.Add(20 * time.Minute), 15, 20},
		{"floors partial minutes", boundary.Add(20*time.Minute + 59*time.Second), 15, 20},
		{"no grace", boundary.Add(90 * time.Second), 0, 1},
		{"no grace under a minute", boundary.Add(30 * time.Second), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LateMinutes(boundary, tt.actual, tt.grace))
		})
	}
}

func TestEarlyLeaveMinutes(t *testing.T) {
	end := time.Date(2025, 5, 12, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, EarlyLeaveMinutes(end, end))
	assert.Equal(t, 0, EarlyLeaveMinutes(end, end.Add(time.Hour)))
	assert.Equal(t, 30, EarlyLeaveMinutes(end, end.Add(-30*time.Minute)))
	assert.Equal(t, 0, EarlyLeaveMinutes(end, end.Add(-59*time.Second)))
	assert.Equal(t, 1, EarlyLeaveMinutes(end, end.Add(-61*time.Second)))
}

func TestClassifyCheckIn(t *testing.T) {
	start := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

	got := ClassifyCheckIn(start, start.Add(10*time.Minute), 15)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, 0, got.LateMinutes)

	got = ClassifyCheckIn(start, start.Add(25*time.Minute), 15)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 25, got.LateMinutes)
}

func TestClassifyCheckOut(t *testing.T) {
	end := time.Date(2025, 5, 12, 17, 0, 0, 0, time.UTC)

	got := ClassifyCheckOut(attendance.StatusPresent, end, end.Add(-45*time.Minute))
	assert.Equal(t, attendance.StatusEarlyLeave, got.Status)
	assert.Equal(t, 45, got.EarlyLeaveMinutes)

	got = ClassifyCheckOut(attendance.StatusLate, end, end.Add(-45*time.Minute))
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 45, got.EarlyLeaveMinutes)

	got = ClassifyCheckOut(attendance.StatusPresent, end, end.Add(5*time.Minute))
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestClassifyCheckOut_OvernightBoundary(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 22:00-06:00 shift starting on the 12th ends on the 13th.
	end := time.Date(2025, 5, 13, 6, 0, 0, 0, jakarta)
	got := ClassifyCheckOut(attendance.StatusPresent, end, time.Date(2025, 5, 13, 5, 30, 0, 0, jakarta))
	assert.Equal(t, 30, got.EarlyLeaveMinutes)

	got = ClassifyCheckOut(attendance.StatusPresent, end, time.Date(2025, 5, 12, 23, 0, 0, 0, jakarta))
	assert.Equal(t, 7*60, got.EarlyLeaveMinutes)
}

func TestCalendarDate(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 20:30 UTC is 03:30 the next day in Jakarta.
	instant := time.Date(2025, 5, 12, 20, 30, 0, 0, time.UTC)
	got := CalendarDate(instant, jakarta)
	assert.Equal(t, time.Date(2025, 5, 13, 0, 0, 0, 0, jakarta), got)
	assert.Equal(t, jakarta, got.Location())

	assert.Equal(t, time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), CalendarDate(instant, time.UTC))
}

func TestSameDate(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	local := time.Date(2025, 3, 3, 0, 0, 0, 0, jakarta)
	assert.True(t, SameDate(local, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, SameDate(local, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, local.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
}

func TestWorkedAndOvertimeHours(t *testing.T) {
	in := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, 5, 12, 18, 30, 0, 0, time.UTC)
	end := time.Date(2025, 5, 12, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, 8.5, WorkedHours(in, out, 60))
	assert.Equal(t, 9.5, WorkedHours(in, out, 0))
	assert.Equal(t, 0.0, WorkedHours(in, in.Add(10*time.Minute), 60))
	assert.Equal(t, 1.5, OvertimeHours(end, out))
	assert.Equal(t, 0.0, OvertimeHours(end, end.Add(-time.Minute)))
	assert.Equal(t, 0.33, OvertimeHours(end, end.Add(20*time.Minute)))
}
