package engine

import "github.com/mwhitfield/gantry/internal/model"

// Outcome is the typed result of a propagation attempt. The engine
// never signals anticipated failures by error text; callers switch on
// this tag.
type Outcome int

const (
	// OutcomeOk: propagation completed and was applied.
	OutcomeOk Outcome = iota
	// OutcomeCyclic: a dependency cycle among automatically scheduled
	// events was detected; nothing was applied.
	OutcomeCyclic
	// OutcomeUnsatisfiable: a constraint could not be honored; nothing
	// was applied.
	OutcomeUnsatisfiable
	// OutcomeFailed: propagation hit an unexpected internal error;
	// nothing was applied and CommitResult.Err carries the cause.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeCyclic:
		return "cyclic"
	case OutcomeUnsatisfiable:
		return "unsatisfiable"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// CommitResult is delivered to every caller awaiting a commit.
type CommitResult struct {
	// Outcome tags the result.
	Outcome Outcome

	// RejectedWith carries the cause when Outcome is not OutcomeOk:
	// a *graph.CyclicDependencyError or an
	// *UnsatisfiableConstraintError. It is a reportable value, not a
	// thrown error.
	RejectedWith error

	// Revision is the committed revision for OutcomeOk, zero otherwise.
	Revision int64

	// Changes lists the observable field movements, nil when nothing
	// changed or the commit was rejected.
	Changes *ChangeSet

	// Err carries an unexpected internal failure (programming error,
	// malformed data) when Outcome is OutcomeFailed. The commit was
	// rolled back before Err was set; callers should treat it as a
	// thrown error, unlike RejectedWith.
	Err error
}

// Rejected reports whether the commit was rejected.
func (r CommitResult) Rejected() bool { return r.Outcome != OutcomeOk }

// ChangeSet is the single batched notification for one commit.
type ChangeSet struct {
	Revision int64
	Entities []EntityChange
}

// EntityChange names one event whose observable fields moved, the
// fields that moved (in schema declaration order), and the schedules
// before and after.
type EntityChange struct {
	EventID model.EventID
	Fields  []string
	Before  model.Schedule
	After   model.Schedule
}

// diffSchedules returns the changed field names in schema order, nil
// when the schedules are observably identical.
func diffSchedules(before, after model.Schedule) []string {
	var fields []string
	if !before.StartDate.Equal(after.StartDate) {
		fields = append(fields, model.FieldStartDate)
	}
	if !before.EndDate.Equal(after.EndDate) {
		fields = append(fields, model.FieldEndDate)
	}
	if before.Duration != after.Duration {
		fields = append(fields, model.FieldDuration)
	}
	if !before.EarlyStartDate.Equal(after.EarlyStartDate) {
		fields = append(fields, model.FieldEarlyStartDate)
	}
	if !before.EarlyEndDate.Equal(after.EarlyEndDate) {
		fields = append(fields, model.FieldEarlyEndDate)
	}
	return fields
}
