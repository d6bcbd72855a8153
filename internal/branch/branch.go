package branch

import (
	"errors"

	"github.com/mwhitfield/gantry/internal/engine"
	"github.com/mwhitfield/gantry/internal/graph"
	"github.com/mwhitfield/gantry/internal/model"
)

// Validation is the typed result of a dependency validation attempt.
type Validation int

const (
	// ValidationOk: the edge is legal.
	ValidationOk Validation = iota
	// ValidationCyclic: the edge would close a cycle among
	// automatically scheduled events.
	ValidationCyclic
	// ValidationDuplicate: the ordered pair already carries an active,
	// non-ignored edge.
	ValidationDuplicate
)

func (v Validation) String() string {
	switch v {
	case ValidationOk:
		return "ok"
	case ValidationCyclic:
		return "cyclic"
	case ValidationDuplicate:
		return "duplicate"
	}
	return "unknown"
}

// hypotheticalEdgeID never collides with persisted IDs: branches are
// the only writer of this namespace and they are always discarded.
const hypotheticalEdgeID = model.DependencyID("branch/hypothetical")

// Branch is an ephemeral overlay for one validation. It owns a
// snapshot of the committed graph; every write lands in the snapshot,
// never in the project.
type Branch struct {
	view   *graph.Graph
	manual map[model.EventID]bool

	cycle     *graph.CyclicDependencyError
	duplicate *graph.DuplicateDependencyError
}

// Open captures a branch over the engine's committed state.
func Open(e *engine.Engine) *Branch {
	view, manual := e.ValidationSnapshot()
	return &Branch{view: view, manual: manual}
}

// Validate checks a hypothetical edge. Edges listed in ignore are
// removed from the overlay first, which supports reassignment flows
// ("replace edge X with this one"). The committed project is untouched
// on every exit path. A branch validates once; open a fresh branch per
// query.
//
// Unknown endpoints surface as an error (malformed input); the
// anticipated outcomes are values.
func (b *Branch) Validate(from, to model.EventID, typ model.DependencyType, ignore []model.DependencyID) (Validation, error) {
	if !b.view.HasNode(from) {
		return ValidationOk, &graph.UnknownEventError{Event: from}
	}
	if !b.view.HasNode(to) {
		return ValidationOk, &graph.UnknownEventError{Event: to}
	}

	for _, id := range ignore {
		b.view.RemoveEdge(id)
	}

	if err := b.view.AddEdge(&model.DependencyRecord{
		ID:     hypotheticalEdgeID,
		From:   from,
		To:     to,
		Type:   typ,
		Active: true,
	}); err != nil {
		var dup *graph.DuplicateDependencyError
		if errors.As(err, &dup) {
			b.duplicate = dup
			return ValidationDuplicate, nil
		}
		return ValidationOk, err
	}

	// Force the branch's own propagation ordering over everything the
	// edge can influence. Manual anchors break ordering exactly as the
	// live engine's commit does.
	hard := func(e *model.DependencyRecord) bool { return !b.manual[e.To] }
	closure := graph.Descendants(b.view, []model.EventID{to})
	if _, cyc := graph.TopoOrder(b.view, closure, hard); cyc != nil {
		b.cycle = cyc
		return ValidationCyclic, nil
	}
	return ValidationOk, nil
}

// Cycle returns the typed detail behind a ValidationCyclic outcome,
// nil otherwise.
func (b *Branch) Cycle() *graph.CyclicDependencyError { return b.cycle }

// Duplicate returns the typed detail behind a ValidationDuplicate
// outcome, nil otherwise.
func (b *Branch) Duplicate() *graph.DuplicateDependencyError { return b.duplicate }

// ValidateDependency opens a branch, validates one hypothetical edge,
// and discards the branch.
func ValidateDependency(e *engine.Engine, from, to model.EventID, typ model.DependencyType, ignore []model.DependencyID) (Validation, error) {
	return Open(e).Validate(from, to, typ, ignore)
}

// IsDependencyCyclic is the boolean convenience over ValidateDependency.
// Duplicates are not cycles.
func IsDependencyCyclic(e *engine.Engine, from, to model.EventID, typ model.DependencyType, ignore []model.DependencyID) (bool, error) {
	v, err := ValidateDependency(e, from, to, typ, ignore)
	if err != nil {
		return false, err
	}
	return v == ValidationCyclic, nil
}
