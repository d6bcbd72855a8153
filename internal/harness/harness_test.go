package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/gantry/internal/project"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestRun_ChainReschedule(t *testing.T) {
	s := loadTestScenario(t, "chain-fs-lag.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Commits, 2)
	assert.Equal(t, int64(1), result.Commits[0].Revision)
	assert.Equal(t, int64(2), result.Commits[1].Revision)
	// The second commit only touches what actually moved.
	require.Len(t, result.Commits[1].Changed, 2)
	assert.Equal(t, []string{"endDate", "duration", "earlyEndDate"}, result.Commits[1].Changed[0].Fields)

	require.Len(t, result.Schedule, 2)
	assert.Equal(t, "2024-01-01T13:00:00Z", result.Schedule[1].StartDate)
	assert.Equal(t, "2024-01-01T17:00:00Z", result.Schedule[1].EndDate)
}

func TestRun_CycleRefused(t *testing.T) {
	s := loadTestScenario(t, "cycle-refused.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// The refused edge left nothing to commit; the second pass is a
	// no-op at the same revision.
	require.Len(t, result.Commits, 2)
	assert.Equal(t, "ok", result.Commits[1].Outcome)
	assert.Equal(t, int64(1), result.Commits[1].Revision)
	assert.Empty(t, result.Commits[1].Changed)
}

func TestRun_ManualAnchorEarlyDates(t *testing.T) {
	s := &Scenario{
		Name:        "manual-anchor",
		Description: "A manual event keeps its dates and reports where dependencies would put it.",
		Project: project.ProjectData{
			StartDate: "2024-01-01T00:00:00Z",
			Events: []project.EventData{
				{ID: "a", Duration: "4h"},
				{ID: "m", ManuallyScheduled: true, StartDate: "2024-01-02T00:00:00Z", Duration: "8h"},
			},
			Dependencies: []project.DependencyData{
				{ID: "d1", From: "a", To: "m"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertSchedule, Event: "m",
				StartDate:      "2024-01-02T00:00:00Z",
				EndDate:        "2024-01-02T08:00:00Z",
				EarlyStartDate: "2024-01-01T04:00:00Z",
				EarlyEndDate:   "2024-01-01T12:00:00Z"},
			{Type: AssertEditable, Event: "m", Field: "startDate", Editable: true},
			{Type: AssertEditable, Event: "a", Field: "startDate", Editable: false},
			{Type: AssertEditable, Event: "a", Field: "duration", Editable: true},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	s := &Scenario{
		Name:        "mismatch",
		Description: "A legal edge reported where a cycle was expected fails the run.",
		Project: project.ProjectData{
			StartDate: "2024-01-01T00:00:00Z",
			Events: []project.EventData{
				{ID: "a", Duration: "1h"},
				{ID: "b", Duration: "1h"},
			},
		},
		Steps: []Step{
			{AddDependency: &project.DependencyData{ID: "d1", From: "a", To: "b"}, Expect: ExpectCyclic},
		},
		Assertions: []Assertion{
			{Type: AssertRevision, Revision: 1},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "expected cyclic, got ok")
}

func TestRun_RejectedWriteReported(t *testing.T) {
	s := &Scenario{
		Name:        "rejected-write",
		Description: "Writing a derived field on an automatic event is refused.",
		Project: project.ProjectData{
			StartDate: "2024-01-01T00:00:00Z",
			Events:    []project.EventData{{ID: "a", Duration: "1h"}},
		},
		Steps: []Step{
			{Set: &SetStep{Event: "a", Field: "startDate", Value: "2024-02-01T00:00:00Z"}, Expect: ExpectRejected},
		},
		Assertions: []Assertion{
			{Type: AssertSchedule, Event: "a", StartDate: "2024-01-01T00:00:00Z"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnloadableProject(t *testing.T) {
	s := &Scenario{
		Name:        "broken",
		Description: "Malformed wire data is a setup failure, not a result.",
		Project: project.ProjectData{
			Events: []project.EventData{{ID: "a", Duration: "soon"}},
		},
		Assertions: []Assertion{{Type: AssertRevision}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading project")
}
