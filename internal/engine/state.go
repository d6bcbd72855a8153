package engine

// State is the engine's commit state machine.
//
// Transitions:
//
//	Idle -> Dirty            authoritative field set, edge added/removed
//	Dirty -> Committing      debounced schedule or explicit CommitAsync
//	Committing -> Idle       propagation applied (or nothing to do)
//	Committing -> Rejected   cycle or unsatisfiable constraint
//	Rejected -> Idle         result delivered, speculative state dropped
//	Committing -> Dirty      mutations queued during the commit
type State int

const (
	// StateIdle: derived fields are consistent with authoritative state.
	StateIdle State = iota
	// StateDirty: mutations are queued for the next commit.
	StateDirty
	// StateCommitting: a propagation pass is in flight.
	StateCommitting
	// StateRejected: the in-flight pass was rejected; transient, the
	// engine returns to Idle (or Dirty) once the result is delivered.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDirty:
		return "dirty"
	case StateCommitting:
		return "committing"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}
