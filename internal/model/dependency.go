package model

import "time"

// DependencyRecord is a typed edge between two events.
//
// Lag is a span of working time, measured in the calendar selected by
// CalendarSource. Negative lag (lead) is allowed.
//
// Active=false edges are kept in the collection but ignored by
// propagation and validation; reassignment flows deactivate the old
// edge while validating its replacement.
type DependencyRecord struct {
	ID             DependencyID
	From           EventID
	To             EventID
	Type           DependencyType
	Lag            time.Duration
	CalendarSource CalendarSource
	Active         bool
}

// Clone returns a copy of the record.
func (d *DependencyRecord) Clone() *DependencyRecord {
	c := *d
	return &c
}

// SameEndpoints reports whether two edges connect the same ordered pair.
// This is the equivalence used for duplicate detection: a second edge
// between the same (from, to) pair is a duplicate regardless of type or
// lag, matching the rule that a pair of events carries at most one
// active dependency.
func (d *DependencyRecord) SameEndpoints(o *DependencyRecord) bool {
	return d.From == o.From && d.To == o.To
}
