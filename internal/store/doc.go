// Package store persists a project's authoritative state in SQLite.
//
// Only authoritative fields are stored: event records, edges,
// calendar rules, resources, assignments, and the project meta row
// (anchor date, project calendar, committed revision). Derived
// schedules never touch the database; loading a project yields wire
// data that the first commit turns back into schedules, so a stored
// project and its source produce identical derived values.
//
// SQLite runs in WAL mode with a single writer connection. Saves are
// full-snapshot transactions: wipe and rewrite. Project state is small
// (thousands of rows, not millions) and snapshot semantics keep the
// revision column honest without a change log.
package store
