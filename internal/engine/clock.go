package engine

import "sync/atomic"

// RevisionClock is a monotonic counter stamping committed revisions.
// Change notifications and schedule reads carry revision numbers so
// observers can order commits without wall-clock timestamps.
//
// Thread-safety: atomic; callers outside the commit loop only read.
type RevisionClock struct {
	seq atomic.Int64
}

// NewRevisionClock creates a clock starting at 0.
func NewRevisionClock() *RevisionClock {
	return &RevisionClock{}
}

// NewRevisionClockAt creates a clock resuming from a known revision,
// used when loading persisted projects.
func NewRevisionClockAt(start int64) *RevisionClock {
	c := &RevisionClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next revision number and advances the clock.
func (c *RevisionClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest issued revision without advancing.
func (c *RevisionClock) Current() int64 {
	return c.seq.Load()
}
