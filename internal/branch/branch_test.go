package branch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/graph"
	"github.com/mwhitfield/gantry/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

const oneDay = 24 * time.Hour

func newProject(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.WithProjectStart(day(1)), engine.WithAutoCommit(false))
	require.NoError(t, e.AddEvent(&model.EventRecord{ID: "a", Duration: oneDay}))
	require.NoError(t, e.AddEvent(&model.EventRecord{ID: "b", Duration: oneDay}))
	require.NoError(t, e.AddEvent(&model.EventRecord{ID: "c", Duration: oneDay}))
	return e
}

func addDep(t *testing.T, e *engine.Engine, id, from, to string, typ model.DependencyType) {
	t.Helper()
	require.NoError(t, e.AddDependency(&model.DependencyRecord{
		ID:     model.DependencyID(id),
		From:   model.EventID(from),
		To:     model.EventID(to),
		Type:   typ,
		Active: true,
	}))
}

// digest captures the committed dependency set and schedules so tests
// can assert the live project is byte-for-byte unchanged.
func digest(t *testing.T, e *engine.Engine) string {
	t.Helper()
	d, err := model.StateDigest(map[string]any{
		"dependencies": e.Dependencies(),
		"schedules":    e.Schedules(),
	})
	require.NoError(t, err)
	return d
}

func TestBranch_CyclicEdgeRejected(t *testing.T) {
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	res := e.Commit()
	require.NoError(t, res.Err)
	before := digest(t, e)

	v, err := ValidateDependency(e, "b", "a", model.StartToFinish, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationCyclic, v)

	// Validation buffers everything in the branch; the committed
	// project must not have moved.
	assert.Equal(t, before, digest(t, e))
	_, ok := e.Dependency(hypotheticalEdgeID)
	assert.False(t, ok)
}

func TestBranch_LegalEdge(t *testing.T) {
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)
	before := digest(t, e)

	v, err := ValidateDependency(e, "b", "c", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationOk, v)
	assert.Equal(t, before, digest(t, e))
}

func TestBranch_TransitiveCycle(t *testing.T) {
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	addDep(t, e, "d2", "b", "c", model.StartToStart)
	require.NoError(t, e.Commit().Err)

	v, err := ValidateDependency(e, "c", "a", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationCyclic, v)
}

func TestBranch_DuplicateEdge(t *testing.T) {
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)

	v, err := ValidateDependency(e, "a", "b", model.StartToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationDuplicate, v)
}

func TestBranch_IgnoreEdgeForReassignment(t *testing.T) {
	// Replacing d1 with its reverse: with d1 ignored the reverse edge
	// closes no cycle and is not a duplicate.
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)

	v, err := ValidateDependency(e, "b", "a", model.FinishToStart, []model.DependencyID{"d1"})
	require.NoError(t, err)
	assert.Equal(t, ValidationOk, v)

	// Without the ignore list the same edge is cyclic, and the failed
	// first validation left no residue behind.
	v, err = ValidateDependency(e, "b", "a", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationCyclic, v)

	v, err = ValidateDependency(e, "a", "b", model.StartToStart, []model.DependencyID{"d1"})
	require.NoError(t, err)
	assert.Equal(t, ValidationOk, v, "ignoring the existing pair lifts the duplicate check")
}

func TestBranch_ManualAnchorBreaksCycle(t *testing.T) {
	// b is manually scheduled, so edges into b impose no ordering and
	// the apparent a->b->a loop is legal.
	e := newProject(t)
	require.NoError(t, e.UpdateEvent("b", func(rec *model.EventRecord) {
		rec.ManuallyScheduled = true
		rec.StartDate = day(3)
	}))
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)

	v, err := ValidateDependency(e, "b", "a", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationOk, v)
}

func TestBranch_UnknownEndpoint(t *testing.T) {
	e := newProject(t)
	require.NoError(t, e.Commit().Err)

	_, err := ValidateDependency(e, "a", "ghost", model.FinishToStart, nil)
	require.Error(t, err)
	assert.True(t, graph.IsUnknownEventError(err))

	_, err = ValidateDependency(e, "ghost", "a", model.FinishToStart, nil)
	require.Error(t, err)
	assert.True(t, graph.IsUnknownEventError(err))
}

func TestBranch_SnapshotIgnoresUncommittedManualFlag(t *testing.T) {
	// The branch reads the engine's current records, so a manual flag
	// staged before commit already anchors validation.
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)

	require.NoError(t, e.UpdateEvent("b", func(rec *model.EventRecord) {
		rec.ManuallyScheduled = true
		rec.StartDate = day(3)
	}))
	v, err := ValidateDependency(e, "b", "a", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.Equal(t, ValidationOk, v)
}

func TestIsDependencyCyclic(t *testing.T) {
	e := newProject(t)
	addDep(t, e, "d1", "a", "b", model.FinishToStart)
	require.NoError(t, e.Commit().Err)

	cyc, err := IsDependencyCyclic(e, "b", "a", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.True(t, cyc)

	cyc, err = IsDependencyCyclic(e, "b", "c", model.FinishToStart, nil)
	require.NoError(t, err)
	assert.False(t, cyc)

	// Duplicates are not cycles.
	cyc, err = IsDependencyCyclic(e, "a", "b", model.StartToStart, nil)
	require.NoError(t, err)
	assert.False(t, cyc)
}
