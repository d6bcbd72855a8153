// Package model defines the record types shared by the scheduling core.
//
// Records carry only AUTHORITATIVE fields - values the application is
// allowed to set directly (start, end, duration, constraints, flags,
// calendar references). Derived values (recomputed start/end/duration,
// early dates) live in engine-owned schedules and are never stored on
// records, never serialized, and never written by application code.
//
// Field semantics are described by explicit descriptor tables (see
// field.go) rather than per-type code: a single generic derivation
// engine consumes the table to decide which fields are writable for a
// given entity in its current scheduling mode.
//
// All timestamps are UTC. Durations are spans of WORKING time, measured
// by a calendar, not wall-clock spans.
package model
