package model

import "time"

// EventRecord is the authoritative state of a schedulable entity.
//
// Zero-valued StartDate/EndDate mean "unset"; a zero Duration is a
// legal (milestone) duration and is meaningful whenever StartDate or
// Duration was provided at load time.
//
// INVARIANT: nothing outside the propagation engine ever computes a
// date from another date on this struct. Records are inputs; the
// engine's Schedule is the output.
type EventRecord struct {
	ID                EventID
	Name              string
	StartDate         time.Time
	EndDate           time.Time
	Duration          time.Duration
	ConstraintType    ConstraintType
	ConstraintDate    time.Time
	ManuallyScheduled bool
	CalendarID        CalendarID
}

// Clone returns a deep copy of the record. Records contain no reference
// types today, but all copying routes through here so overlay code
// (transactional branches) stays correct if that changes.
func (e *EventRecord) Clone() *EventRecord {
	c := *e
	return &c
}

// Schedule is the engine-computed view of one event after a commit.
// All fields are derived; readers obtain Schedules from the project
// after CommitAsync resolves and must treat them as immutable.
type Schedule struct {
	EventID   EventID
	StartDate time.Time
	EndDate   time.Time
	Duration  time.Duration

	// Early dates are the earliest placement achievable from
	// predecessors and constraints alone, ignoring the entity's own
	// manual schedule. For a manually scheduled event they may differ
	// from StartDate/EndDate; that difference is the scheduling
	// conflict signal.
	EarlyStartDate time.Time
	EarlyEndDate   time.Time
}

// Equal reports whether two schedules carry identical observable values.
// Used to suppress change notifications for untouched entities.
func (s Schedule) Equal(o Schedule) bool {
	return s.EventID == o.EventID &&
		s.StartDate.Equal(o.StartDate) &&
		s.EndDate.Equal(o.EndDate) &&
		s.Duration == o.Duration &&
		s.EarlyStartDate.Equal(o.EarlyStartDate) &&
		s.EarlyEndDate.Equal(o.EarlyEndDate)
}
