package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/gantry/internal/model"
)

// businessHours builds the standard test calendar: Mon-Fri 09:00-17:00
// working, everything else non-working.
func businessHours(t *testing.T) *Calendar {
	t.Helper()
	c := New("business", WithUnspecifiedTimeWorking(false))
	require.NoError(t, c.AddRecurrentInterval("every mon,tue,wed,thu,fri at 09:00-17:00", true))
	return c
}

func date(day int, hour int) time.Time {
	// January 2024: the 1st is a Monday.
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestCalendar_IsWorkingTime(t *testing.T) {
	c := businessHours(t)

	assert.True(t, c.IsWorkingTime(date(1, 10)), "Monday 10:00 is working")
	assert.False(t, c.IsWorkingTime(date(1, 8)), "Monday 08:00 is before hours")
	assert.False(t, c.IsWorkingTime(date(6, 10)), "Saturday is non-working")
}

func TestCalendar_IsWorkingTime_Deterministic(t *testing.T) {
	c := businessHours(t)
	instant := date(3, 12)
	first := c.IsWorkingTime(instant)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, c.IsWorkingTime(instant))
	}
}

func TestCalendar_LastRegisteredWins(t *testing.T) {
	c := businessHours(t)

	// Wednesday the 3rd declared a holiday, registered after the
	// business-hours rule: it must override.
	require.NoError(t, c.AddStaticInterval(date(3, 0), date(4, 0), false))
	assert.False(t, c.IsWorkingTime(date(3, 10)), "holiday overrides business hours")

	// An exception registered after the holiday re-opens the afternoon.
	require.NoError(t, c.AddStaticInterval(date(3, 13), date(3, 17), true))
	assert.True(t, c.IsWorkingTime(date(3, 14)), "later exception overrides the holiday")
	assert.False(t, c.IsWorkingTime(date(3, 10)), "morning still closed")
}

func TestCalendar_Revision(t *testing.T) {
	c := New("rev")
	r0 := c.Revision()
	require.NoError(t, c.AddStaticInterval(date(1, 0), date(2, 0), false))
	assert.Greater(t, c.Revision(), r0, "mutation must move the revision")
}

func TestCalendar_AddStaticInterval_Inverted(t *testing.T) {
	c := New("bad")
	err := c.AddStaticInterval(date(2, 0), date(1, 0), false)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestCalendar_AddRecurrentInterval_MalformedFailsSynchronously(t *testing.T) {
	c := New("bad")
	err := c.AddRecurrentInterval("whenever feels right", false)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	// The malformed rule must not have been registered.
	assert.Empty(t, c.Intervals())
}

func TestCalendar_NextWorkingInstant_Forward(t *testing.T) {
	c := businessHours(t)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"already working", date(1, 10), date(1, 10)},
		{"before hours", date(1, 7), date(1, 9)},
		{"after hours skips to next day", date(1, 18), date(2, 9)},
		{"weekend skips to Monday", date(6, 10), date(8, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.NextWorkingInstant(tt.from, model.Forward)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendar_NextWorkingInstant_Backward(t *testing.T) {
	c := businessHours(t)

	// From Saturday noon, the latest working edge is Friday 17:00.
	got, err := c.NextWorkingInstant(date(6, 12), model.Backward)
	require.NoError(t, err)
	assert.Equal(t, date(5, 17), got)

	// Inside working time, the instant itself is returned.
	got, err = c.NextWorkingInstant(date(1, 10), model.Backward)
	require.NoError(t, err)
	assert.Equal(t, date(1, 10), got)
}

func TestCalendar_NextWorkingInstant_NoWorkingTime(t *testing.T) {
	c := New("closed", WithUnspecifiedTimeWorking(false))

	_, err := c.NextWorkingInstant(date(1, 0), model.Forward)
	require.Error(t, err)
	assert.True(t, IsExhaustedError(err))
}

func TestCalendar_DurationOfWorkingTime(t *testing.T) {
	c := businessHours(t)

	tests := []struct {
		name       string
		start, end time.Time
		want       time.Duration
	}{
		{"zero-length range", date(1, 10), date(1, 10), 0},
		{"inverted range", date(1, 12), date(1, 10), 0},
		{"entirely non-working", date(6, 0), date(7, 0), 0},
		{"one full working day", date(1, 0), date(2, 0), 8 * time.Hour},
		{"partial overlap", date(1, 12), date(1, 20), 5 * time.Hour},
		{"full week spans weekend", date(1, 0), date(8, 0), 5 * 8 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.DurationOfWorkingTime(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendar_AddWorkingDuration(t *testing.T) {
	c := businessHours(t)

	// 8h from Monday 09:00 lands on Monday 17:00.
	got, err := c.AddWorkingDuration(date(1, 9), 8*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(1, 17), got)

	// 12h from Monday 09:00 crosses into Tuesday.
	got, err = c.AddWorkingDuration(date(1, 9), 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(2, 13), got)

	// Zero duration is the identity.
	got, err = c.AddWorkingDuration(date(1, 9), 0)
	require.NoError(t, err)
	assert.Equal(t, date(1, 9), got)
}

func TestCalendar_AddWorkingDuration_SkipsNonWorkingWednesday(t *testing.T) {
	// Whole days working, Wednesday the 3rd off. A 3-day duration from
	// Monday must land on Friday, not Thursday.
	c := New("days")
	require.NoError(t, c.AddStaticInterval(date(3, 0), date(4, 0), false))

	got, err := c.AddWorkingDuration(date(1, 0), 3*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(5, 0), got)
}

func TestCalendar_AddWorkingDuration_Backward(t *testing.T) {
	c := businessHours(t)

	// 8h backward from Monday the 8th 17:00 lands at Monday 09:00.
	got, err := c.AddWorkingDuration(date(8, 17), -8*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(8, 9), got)

	// 4h backward from Monday 11:00 crosses the weekend into Friday.
	got, err = c.AddWorkingDuration(date(8, 11), -4*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(5, 15), got)
}

func TestCalendar_AddWorkingDuration_NoWorkingTime(t *testing.T) {
	c := New("closed", WithUnspecifiedTimeWorking(false))

	_, err := c.AddWorkingDuration(date(1, 0), time.Hour)
	require.Error(t, err)
	assert.True(t, IsExhaustedError(err))
}

func TestCalendar_DefaultIsAlwaysWorking(t *testing.T) {
	c := New("default")
	assert.True(t, c.IsWorkingTime(date(6, 3)))

	got, err := c.AddWorkingDuration(date(1, 0), 36*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, date(2, 12), got)
}
