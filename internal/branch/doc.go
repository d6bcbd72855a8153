// Package branch answers "would this dependency be legal?" without
// touching committed state.
//
// A branch is an ephemeral overlay over a snapshot of the committed
// dependency graph. The hypothetical edge is added to the overlay (and
// any ignored edges removed - reassignment validation supplies the
// edge being replaced), then a propagation ordering is attempted over
// the affected subgraph. A cycle in that ordering means the edge is
// illegal. The overlay buffers every write; committed state is never
// touched, so discarding a branch is dropping the value - that holds
// on every exit path, success, cycle, or error.
//
// Cycle outcomes are typed values (Validation), never inferred from
// error text.
package branch
