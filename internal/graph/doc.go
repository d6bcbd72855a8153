// Package graph maintains the typed dependency edges between events
// and produces the deterministic processing order the propagation
// engine recomputes in.
//
// The graph stores edges by ID plus forward and reverse adjacency. All
// ordering is deterministic: events carry an insertion sequence, and
// topological sorts break ties by that sequence (Kahn's algorithm with
// a sorted ready queue), so independent subgraphs always process in the
// same order and test output is reproducible.
//
// Cycle VALIDATION (the "would this edge create a cycle" question) is
// not answered here; the transactional branch package runs it against
// an overlay so the live graph is never touched. This package only
// reports cycles it encounters while sorting, as data for the engine's
// rejection path.
package graph
