package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDependencyType(t *testing.T) {
	for typ, name := range dependencyTypeNames {
		got, ok := ParseDependencyType(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, got)
	}

	// The two-letter codes are accepted on the wire.
	codes := map[string]DependencyType{
		"FS": FinishToStart,
		"SS": StartToStart,
		"FF": FinishToFinish,
		"SF": StartToFinish,
	}
	for code, want := range codes {
		got, ok := ParseDependencyType(code)
		require.True(t, ok, code)
		assert.Equal(t, want, got)
	}

	_, ok := ParseDependencyType("fs")
	assert.False(t, ok)
	assert.Equal(t, "unknown", DependencyType(99).String())
}

func TestParseConstraintType(t *testing.T) {
	for typ, name := range constraintTypeNames {
		got, ok := ParseConstraintType(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, got)
	}
	_, ok := ParseConstraintType("asap")
	assert.False(t, ok)
}

func TestParseCalendarSource(t *testing.T) {
	// Empty defaults to the successor's calendar.
	got, ok := ParseCalendarSource("")
	require.True(t, ok)
	assert.Equal(t, LagCalendarToEvent, got)

	for src, name := range calendarSourceNames {
		got, ok := ParseCalendarSource(name)
		require.True(t, ok, name)
		assert.Equal(t, src, got)
	}
	_, ok = ParseCalendarSource("toevent")
	assert.False(t, ok)
}

func TestDependencyRecord_SameEndpoints(t *testing.T) {
	a := &DependencyRecord{From: "x", To: "y", Type: FinishToStart}
	b := &DependencyRecord{From: "x", To: "y", Type: StartToStart, Lag: 3600}
	c := &DependencyRecord{From: "y", To: "x"}

	// Type and lag do not make a second edge between the same pair
	// legal.
	assert.True(t, a.SameEndpoints(b))
	assert.False(t, a.SameEndpoints(c))
}

func TestScheduleEqual(t *testing.T) {
	base := Schedule{EventID: "a", Duration: 3600}
	same := base
	assert.True(t, base.Equal(same))

	other := base
	other.Duration = 7200
	assert.False(t, base.Equal(other))

	renamed := base
	renamed.EventID = "b"
	assert.False(t, base.Equal(renamed))
}
