package harness

import (
	"fmt"

	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/project"
)

// CommitTrace records one propagation pass: its outcome, the revision
// it produced and the events whose observable fields moved.
type CommitTrace struct {
	Revision int64           `json:"revision"`
	Outcome  string          `json:"outcome"`
	Rejected string          `json:"rejected,omitempty"`
	Changed  []ChangedEntity `json:"changed,omitempty"`
}

// ChangedEntity names one event and the fields a commit moved, in
// schema declaration order.
type ChangedEntity struct {
	Event  string   `json:"event"`
	Fields []string `json:"fields"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step met its expected outcome and every
	// assertion held.
	Pass bool `json:"pass"`

	// Errors lists the step and assertion failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`

	// Commits traces every propagation pass in order, including the
	// initial commit that materializes the loaded project.
	Commits []CommitTrace `json:"commits"`

	// Schedule is the final committed schedule in insertion order.
	Schedule []project.ScheduleData `json:"schedule"`

	// Revision is the final committed revision.
	Revision int64 `json:"revision"`
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

func (r *Result) addCommit(res engine.CommitResult) {
	tr := CommitTrace{
		Revision: res.Revision,
		Outcome:  res.Outcome.String(),
	}
	if res.RejectedWith != nil {
		tr.Rejected = res.RejectedWith.Error()
	}
	if res.Changes != nil {
		for _, ec := range res.Changes.Entities {
			tr.Changed = append(tr.Changed, ChangedEntity{
				Event:  string(ec.EventID),
				Fields: ec.Fields,
			})
		}
	}
	r.Commits = append(r.Commits, tr)
}
