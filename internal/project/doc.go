// Package project is the aggregate root of a schedule: the propagation
// engine plus the record collections callers edit (events,
// dependencies, calendars, resources, assignments).
//
// All mutation flows through the stores, which route into the engine's
// dirty tracking; derived schedules update on the next commit.
// Dependency insertion validates against a transactional branch first,
// so an illegal edge is refused as a typed value before it can touch
// committed state.
//
// Field-level access (Set, SetAsync, IsEditable) is driven by the
// model's field descriptor table rather than per-field methods.
package project
