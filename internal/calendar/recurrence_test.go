package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecurrence_DailyWindow(t *testing.T) {
	r, err := ParseRecurrence("every day at 09:00-17:00")
	require.NoError(t, err)

	// Monday 2024-01-08, 10:00 UTC is inside the window.
	assert.True(t, r.covers(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)))
	// 08:59 is outside.
	assert.False(t, r.covers(time.Date(2024, 1, 8, 8, 59, 0, 0, time.UTC)))
	// Window is half-open: 17:00 itself is outside.
	assert.False(t, r.covers(time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC)))
	// 09:00 itself is inside.
	assert.True(t, r.covers(time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)))
}

func TestParseRecurrence_WeekdaySet(t *testing.T) {
	r, err := ParseRecurrence("every sat,sun")
	require.NoError(t, err)

	sat := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	mon := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	assert.True(t, r.covers(sat), "saturday noon should be covered")
	assert.False(t, r.covers(mon), "monday noon should not be covered")
}

func TestParseRecurrence_Malformed(t *testing.T) {
	tests := []struct {
		name string
		rule string
	}{
		{"empty", ""},
		{"missing every", "each day at 09:00-17:00"},
		{"unknown day", "every blursday"},
		{"duplicate day", "every mon,mon"},
		{"bad window separator", "every day at 09:00..17:00"},
		{"inverted window", "every day at 17:00-09:00"},
		{"zero-length window", "every day at 09:00-09:00"},
		{"out of range hour", "every day at 25:00-26:00"},
		{"missing at", "every day 09:00-17:00"},
		{"trailing garbage", "every day at 09:00-17:00 please"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecurrence(tt.rule)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err), "expected ConfigurationError, got %v", err)
		})
	}
}

func TestParseRecurrence_EndOfDaySentinel(t *testing.T) {
	r, err := ParseRecurrence("every mon at 18:00-24:00")
	require.NoError(t, err)

	assert.True(t, r.covers(time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC)))
	// Midnight of Tuesday is not covered (half-open window).
	assert.False(t, r.covers(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
}

func TestRecurrence_NextBoundary(t *testing.T) {
	r, err := ParseRecurrence("every day at 09:00-17:00")
	require.NoError(t, err)

	// From 08:00, the next boundary is today's window start.
	b, ok := r.nextBoundary(time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), b)

	// From 10:00, the next boundary is today's window end.
	b, ok = r.nextBoundary(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC), b)

	// From 18:00, the next boundary is tomorrow's window start.
	b, ok = r.nextBoundary(time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), b)
}

func TestRecurrence_PrevBoundary(t *testing.T) {
	r, err := ParseRecurrence("every mon at 09:00-17:00")
	require.NoError(t, err)

	// From Wednesday noon, the previous boundary is Monday's window end.
	b, ok := r.prevBoundary(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC), b)

	// From Monday 10:00, the previous boundary is Monday's window start.
	b, ok = r.prevBoundary(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), b)
}
