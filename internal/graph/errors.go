package graph

import (
	"errors"
	"fmt"

	"github.com/mwhitfield/gantry/internal/model"
)

// DuplicateDependencyError reports an attempt to add an edge between an
// ordered pair that already carries an active, non-ignored edge.
type DuplicateDependencyError struct {
	Existing model.DependencyID
	From     model.EventID
	To       model.EventID
}

func (e *DuplicateDependencyError) Error() string {
	return fmt.Sprintf("duplicate dependency %s -> %s (existing edge %s)", e.From, e.To, e.Existing)
}

// IsDuplicateDependencyError reports whether err is a
// *DuplicateDependencyError, unwrapping as needed.
func IsDuplicateDependencyError(err error) bool {
	var de *DuplicateDependencyError
	return errors.As(err, &de)
}

// CyclicDependencyError reports a dependency cycle among automatically
// scheduled events. Members lists the events on the cycle in insertion
// order. This error crosses the public boundary only as a result value
// (CommitResult.RejectedWith, DependencyValidation), never as a throw
// for the anticipated validation cases.
type CyclicDependencyError struct {
	Members []model.EventID
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency among %d events: %v", len(e.Members), e.Members)
}

// IsCyclicDependencyError reports whether err is a
// *CyclicDependencyError, unwrapping as needed.
func IsCyclicDependencyError(err error) bool {
	var ce *CyclicDependencyError
	return errors.As(err, &ce)
}

// UnknownEventError reports an edge endpoint that is not registered.
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
