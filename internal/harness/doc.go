// Package harness runs YAML-defined scheduling scenarios against a
// live project and compares the resulting commit trace and schedule
// with golden snapshots.
//
// A scenario declares an initial project in wire form, a sequence of
// mutation steps (field writes, edge insertions, removals, commits)
// with expected outcomes, and a set of assertions over the final
// state. Scenarios are the conformance surface: each one pins down an
// observable behavior of the propagation engine, such as "growing an
// upstream duration shifts the whole downstream chain" or "a cyclic
// edge is refused without disturbing the committed schedule".
//
// Golden files hold the canonical JSON rendering of the commit trace
// and final schedule. Determinism comes from three choices: the
// project uses a sequence ID generator instead of UUIDs, collections
// serialize in insertion order, and the snapshot is produced by the
// same canonical marshaler that backs state digests.
package harness
