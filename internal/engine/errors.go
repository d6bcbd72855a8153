package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwhitfield/gantry/internal/model"
)

// UnsatisfiableConstraintError reports a constraint the propagation
// pass could not honor: a late-bound constraint (StartNoLaterThan,
// FinishNoLaterThan, MustStartOn, MustFinishOn) whose date conflicts
// with what predecessors force. Carried as CommitResult.RejectedWith,
// never thrown across the public boundary.
type UnsatisfiableConstraintError struct {
	Event      model.EventID
	Constraint model.ConstraintType
	Date       time.Time
	Computed   time.Time
}

func (e *UnsatisfiableConstraintError) Error() string {
	return fmt.Sprintf("unsatisfiable constraint %s on %s: requires %s, dependencies force %s",
		e.Constraint, e.Event,
		e.Date.Format(time.RFC3339), e.Computed.Format(time.RFC3339))
}

// IsUnsatisfiableConstraintError reports whether err is an
// *UnsatisfiableConstraintError, unwrapping as needed.
func IsUnsatisfiableConstraintError(err error) bool {
	var ue *UnsatisfiableConstraintError
	return errors.As(err, &ue)
}

// UnknownCalendarError reports a dangling calendar reference. This is
// malformed data, not an anticipated scheduling outcome, so it
// propagates as a thrown error.
type UnknownCalendarError struct {
	Calendar model.CalendarID
	Event    model.EventID
}

func (e *UnknownCalendarError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("event %s references unknown calendar %q", e.Event, e.Calendar)
	}
	return fmt.Sprintf("unknown calendar %q", e.Calendar)
}

// IsUnknownCalendarError reports whether err is an *UnknownCalendarError.
func IsUnknownCalendarError(err error) bool {
	var ue *UnknownCalendarError
	return errors.As(err, &ue)
}

// UnknownEventError reports a mutation addressed to an unregistered
// event.
type UnknownEventError struct {
	Event model.EventID
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.Event)
}

// IsUnknownEventError reports whether err is an *UnknownEventError.
func IsUnknownEventError(err error) bool {
	var ue *UnknownEventError
	return errors.As(err, &ue)
}

// DuplicateEventError reports registration of an already-known event ID.
type DuplicateEventError struct {
	Event model.EventID
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("event %q already registered", e.Event)
}

// IsDuplicateEventError reports whether err is a *DuplicateEventError.
func IsDuplicateEventError(err error) bool {
	var de *DuplicateEventError
	return errors.As(err, &de)
}
