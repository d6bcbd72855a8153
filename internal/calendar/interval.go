package calendar

import "time"

// Interval is one registered classification rule: a span of time
// (absolute or recurring) marked working or non-working.
type Interval struct {
	// seq is the registration order; the highest seq covering an
	// instant decides its classification.
	seq int

	working bool

	// Static bounds, half-open [start, end). Zero for recurrent rules.
	start time.Time
	end   time.Time

	// Compiled recurrence, nil for static intervals.
	recur *Recurrence

	// Original rule text, kept for diagnostics and serialization.
	rule string
}

// IsWorking reports the interval's classification.
func (iv *Interval) IsWorking() bool { return iv.working }

// Rule returns the recurrence rule text, empty for static intervals.
func (iv *Interval) Rule() string { return iv.rule }

// Static reports whether the interval has absolute bounds.
func (iv *Interval) Static() bool { return iv.recur == nil }

// Bounds returns the absolute bounds of a static interval.
func (iv *Interval) Bounds() (time.Time, time.Time) { return iv.start, iv.end }

// covers reports whether t falls inside the interval.
func (iv *Interval) covers(t time.Time) bool {
	if iv.recur != nil {
		return iv.recur.covers(t)
	}
	return !t.Before(iv.start) && t.Before(iv.end)
}

// nextBoundary returns the earliest instant strictly after t at which
// coverage changes, or ok=false if coverage is constant forever after t.
func (iv *Interval) nextBoundary(t time.Time) (time.Time, bool) {
	if iv.recur != nil {
		return iv.recur.nextBoundary(t)
	}
	if t.Before(iv.start) {
		return iv.start, true
	}
	if t.Before(iv.end) {
		return iv.end, true
	}
	return time.Time{}, false
}

// prevBoundary returns the latest instant at or before t at which
// coverage changes, or ok=false if there is none.
func (iv *Interval) prevBoundary(t time.Time) (time.Time, bool) {
	if iv.recur != nil {
		return iv.recur.prevBoundary(t)
	}
	if !t.Before(iv.end) {
		return iv.end, true
	}
	if !t.Before(iv.start) {
		return iv.start, true
	}
	return time.Time{}, false
}
