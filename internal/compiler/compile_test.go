package compiler

import (
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/gantry/internal/project"
)

func compileString(t *testing.T, src string) (*project.ProjectData, []error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileProject(v)
}

const validProject = `
project: {
	startDate: "2024-01-01T00:00:00Z"
	calendar:  "office"
}

calendar: office: {
	name: "Office"
	unspecifiedNonWorking: true
	intervals: [
		{rule: "every mon,tue,wed,thu,fri at 09:00-17:00", working: true},
		{start: "2024-01-03T00:00:00Z", end: "2024-01-04T00:00:00Z", working: false},
	]
}

event: dig: {
	name:      "dig foundation"
	startDate: "2024-01-01T09:00:00Z"
	duration:  "8h"
}
event: pour: {
	name:     "pour concrete"
	duration: "16h"
}
event: inspect: {
	manuallyScheduled: true
	startDate:         "2024-01-08T09:00:00Z"
	duration:          "4h"
}

dependency: d1: {from: "dig", to: "pour", lag: "2h"}
dependency: d2: {from: "pour", to: "inspect", type: "SS"}

resource: crew: {name: "pour crew", calendar: "office"}

assignment: as1: {event: "pour", resource: "crew", units: 100}
`

func TestCompileProject_Valid(t *testing.T) {
	data, errs := compileString(t, validProject)
	require.Empty(t, errs)

	assert.Equal(t, "2024-01-01T00:00:00Z", data.StartDate)
	assert.Equal(t, "office", data.ProjectCalendar)

	require.Len(t, data.Calendars, 1)
	cal := data.Calendars[0]
	assert.Equal(t, "office", cal.ID)
	assert.True(t, cal.Unworking)
	require.Len(t, cal.Intervals, 2)
	assert.Equal(t, "every mon,tue,wed,thu,fri at 09:00-17:00", cal.Intervals[0].Rule)
	assert.True(t, cal.Intervals[0].Working)
	assert.Equal(t, "2024-01-03T00:00:00Z", cal.Intervals[1].Start)

	require.Len(t, data.Events, 3)
	assert.Equal(t, "dig", data.Events[0].ID)
	assert.Equal(t, "8h", data.Events[0].Duration)
	assert.True(t, data.Events[2].ManuallyScheduled)

	require.Len(t, data.Dependencies, 2)
	assert.Equal(t, "d1", data.Dependencies[0].ID)
	assert.Equal(t, "dig", data.Dependencies[0].From)
	assert.Equal(t, "SS", data.Dependencies[1].Type)

	require.Len(t, data.Resources, 1)
	require.Len(t, data.Assignments, 1)
	assert.Equal(t, 100, data.Assignments[0].Units)
}

func TestCompileProject_LoadsIntoProject(t *testing.T) {
	data, errs := compileString(t, validProject)
	require.Empty(t, errs)

	p := project.New(project.WithAutoCommit(false))
	require.NoError(t, p.Load(*data))
	res := p.Commit()
	require.NoError(t, res.Err)
	assert.Len(t, p.Schedules(), 3)
}

func TestCompileProject_CollectsAllDefects(t *testing.T) {
	src := `
event: a: {duration: "one day"}
event: b: {startDate: "tomorrow"}
dependency: d1: {from: "a", to: "ghost", type: "XX"}
`
	_, errs := compileString(t, src)
	require.NotEmpty(t, errs)
	// One pass reports every defect, not just the first.
	assert.GreaterOrEqual(t, len(errs), 4)
	for _, err := range errs {
		assert.True(t, IsCompileError(err), "unexpected error type: %v", err)
	}
}

func TestCompileProject_ValidationTable(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "missing dependency endpoint",
			src:     `event: a: {}` + "\n" + `dependency: d: {from: "a"}`,
			wantMsg: "required field is missing",
		},
		{
			name:    "unknown dependency target",
			src:     `event: a: {}` + "\n" + `dependency: d: {from: "a", to: "b"}`,
			wantMsg: `unknown event "b"`,
		},
		{
			name:    "self dependency",
			src:     `event: a: {}` + "\n" + `dependency: d: {from: "a", to: "a"}`,
			wantMsg: "endpoints must differ",
		},
		{
			name:    "unknown project calendar",
			src:     `project: calendar: "nights"`,
			wantMsg: `unknown calendar "nights"`,
		},
		{
			name:    "malformed recurrence rule",
			src:     `calendar: c: intervals: [{rule: "every fortnight", working: true}]`,
			wantMsg: "unknown day name",
		},
		{
			name:    "interval with rule and bounds",
			src:     `calendar: c: intervals: [{rule: "every day", start: "2024-01-01T00:00:00Z", end: "2024-01-02T00:00:00Z", working: true}]`,
			wantMsg: "not both",
		},
		{
			name:    "half-bounded interval",
			src:     `calendar: c: intervals: [{start: "2024-01-01T00:00:00Z", working: true}]`,
			wantMsg: "requires a rule or both",
		},
		{
			name:    "unknown constraint type",
			src:     `event: a: {constraintType: "asap"}`,
			wantMsg: "unknown constraint type",
		},
		{
			name:    "assignment to unknown resource",
			src:     `event: a: {}` + "\n" + `assignment: x: {event: "a", resource: "crew"}`,
			wantMsg: `unknown resource "crew"`,
		},
		{
			name:    "negative units",
			src:     `event: a: {}` + "\n" + `resource: r: {}` + "\n" + `assignment: x: {event: "a", resource: "r", units: -5}`,
			wantMsg: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := compileString(t, tt.src)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if IsCompileError(err) && strings.Contains(err.Error(), tt.wantMsg) {
					found = true
				}
			}
			assert.True(t, found, "no error containing %q in %v", tt.wantMsg, errs)
		})
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	data := &project.ProjectData{
		Events: []project.EventData{{ID: "a"}, {ID: "a"}},
	}
	errs := Validate(data)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate event ID")
}
