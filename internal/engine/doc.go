// Package engine implements the constraint-propagation core of the
// scheduler: the dirty-tracking, commit, and rejection machinery that
// keeps derived scheduling fields consistent with authoritative state.
//
// ARCHITECTURE:
//
// Single-Writer Commit Loop:
// All derived-field writes happen inside a single in-flight commit.
// Mutations route through the engine's setters, which journal the old
// value, mark the entity dirty, and (by default) schedule a debounced
// commit. Multiple synchronous mutations coalesce into one propagation
// pass.
//
// Commit Processing Flow:
// 1. The dirty set is swapped out and its transitive closure computed
//    (descendants over active dependency edges - never the whole graph)
// 2. The closure is ordered with Kahn's algorithm; edges into manually
//    scheduled events impose no ordering, so manual anchors break what
//    would otherwise be cycles
// 3. Each event's schedule is recomputed in order: automatically
//    scheduled events from predecessors and constraints, manually
//    scheduled events from their authoritative dates
// 4. A second sweep computes early dates for manually scheduled events
//    once every predecessor holds its final value
// 5. Results apply atomically: either every schedule in the closure is
//    replaced or none is, and a single batched change notification
//    fires naming every event whose observable fields moved
//
// Rejection:
// A cycle among automatically scheduled events, or an unsatisfiable
// constraint, rejects the commit. Speculative schedules are discarded,
// the mutation journal rolls authoritative state back, and the commit
// result carries the cause as a value (Outcome + RejectedWith). The
// anticipated failure cases never surface as thrown errors; only
// programming errors and malformed data propagate as errors.
//
// DETERMINISM:
// Processing order ties resolve by event insertion sequence. Repeated
// commits over identical state produce identical orders, identical
// schedules, and identical notification payloads.
package engine
