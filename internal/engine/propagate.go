package engine

import (
	"errors"

	"github.com/mwhitfield/gantry/internal/calendar"
	"github.com/mwhitfield/gantry/internal/graph"
	"github.com/mwhitfield/gantry/internal/model"
)

// propagateLocked runs one propagation pass over the dirty closure and
// either applies the results atomically or rolls everything back.
// Caller holds e.mu.
func (e *Engine) propagateLocked() CommitResult {
	if len(e.dirty) == 0 {
		// Idempotence: nothing queued, nothing recomputed, no
		// notification. Mutations that leave nothing dirty (a project
		// start with no records, removing a leaf event) still journal;
		// their undo closures are committed here, not kept alive for a
		// later rollback.
		e.journal = nil
		return CommitResult{Outcome: OutcomeOk, Revision: e.clock.Current()}
	}

	seeds := make([]model.EventID, 0, len(e.dirty))
	for id := range e.dirty {
		if _, ok := e.records[id]; ok {
			seeds = append(seeds, id)
		}
	}
	e.dirty = make(map[model.EventID]bool)

	// Only the transitive closure of the dirty set is revisited; the
	// rest of the graph keeps its committed schedules.
	closure := graph.Descendants(e.graph, seeds)

	order, cyc := graph.TopoOrder(e.graph, closure, e.HardEdge)
	if cyc != nil {
		e.rollbackLocked()
		e.log.Warn("commit rejected", "cause", "cycle", "members", len(cyc.Members))
		return CommitResult{Outcome: OutcomeCyclic, RejectedWith: cyc}
	}

	// Pass 1: actual schedules in dependency order. Speculative values
	// stay in spec until the whole pass succeeds.
	spec := make(map[model.EventID]model.Schedule, len(order))
	for _, id := range order {
		sched, err := e.computeScheduleLocked(id, spec)
		if err != nil {
			return e.rejectLocked(err)
		}
		spec[id] = sched
	}

	// Pass 2: early dates of manually scheduled events. Their actual
	// dates impose no ordering, so their predecessors may finalize
	// after them in pass 1; by now every actual value is final.
	for _, id := range order {
		rec := e.records[id]
		if !rec.ManuallyScheduled {
			continue
		}
		sched := spec[id]
		early, err := e.computeEarlyLocked(rec, sched.Duration, spec)
		if err != nil {
			return e.rejectLocked(err)
		}
		sched.EarlyStartDate = early.StartDate
		sched.EarlyEndDate = early.EndDate
		spec[id] = sched
	}

	// Apply atomically: every schedule in the closure or none.
	var changes []EntityChange
	for _, id := range order {
		before := e.schedules[id]
		after := spec[id]
		if fields := diffSchedules(before, after); fields != nil {
			changes = append(changes, EntityChange{
				EventID: id,
				Fields:  fields,
				Before:  before,
				After:   after,
			})
		}
		e.schedules[id] = after
	}
	e.journal = nil

	res := CommitResult{Outcome: OutcomeOk, Revision: e.clock.Current()}
	if len(changes) > 0 {
		res.Revision = e.clock.Next()
		res.Changes = &ChangeSet{Revision: res.Revision, Entities: changes}
		e.log.Debug("commit applied", "revision", res.Revision, "entities", len(changes))
	}
	return res
}

// rejectLocked classifies a propagation failure, rolls back, and
// builds the rejection result. Unsatisfiable constraints and exhausted
// calendar walks are anticipated outcomes reported as values; anything
// else is a programming or data error and surfaces as Err.
func (e *Engine) rejectLocked(err error) CommitResult {
	e.rollbackLocked()
	var ue *UnsatisfiableConstraintError
	if errors.As(err, &ue) {
		e.log.Warn("commit rejected", "cause", "unsatisfiable", "event", string(ue.Event))
		return CommitResult{Outcome: OutcomeUnsatisfiable, RejectedWith: ue}
	}
	if calendar.IsExhaustedError(err) {
		e.log.Warn("commit rejected", "cause", "calendar exhausted")
		return CommitResult{Outcome: OutcomeUnsatisfiable, RejectedWith: err}
	}
	// Unexpected: the rollback already ran, so no speculative state
	// leaks. The outcome still marks the commit as not applied.
	e.log.Error("commit failed", "error", err)
	return CommitResult{Outcome: OutcomeFailed, Err: err}
}

// rollbackLocked unwinds the mutation journal in reverse, restoring
// every authoritative record, edge and schedule touched since the last
// successful commit. Previously-committed state is untouched by
// construction: speculative schedules never left the local map.
func (e *Engine) rollbackLocked() {
	for i := len(e.journal) - 1; i >= 0; i-- {
		e.journal[i]()
	}
	e.journal = nil
	e.dirty = make(map[model.EventID]bool)
}
