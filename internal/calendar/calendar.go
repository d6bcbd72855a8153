package calendar

import (
	"fmt"
	"time"

	"github.com/mwhitfield/gantry/internal/model"
)

// walkBudget bounds every segment walk. A calendar that classifies an
// unbounded span as non-working exhausts the budget and reports an
// error instead of looping forever.
const walkBudget = 50000

// Calendar classifies instants and performs working-time arithmetic.
//
// Not safe for concurrent mutation; the propagation engine serializes
// all access through its commit loop.
type Calendar struct {
	id   model.CalendarID
	name string

	// unspecifiedWorking is the classification of instants covered by
	// no interval.
	unspecifiedWorking bool

	intervals []*Interval
	nextSeq   int

	// revision increments on every mutation so dependent caches can
	// detect staleness.
	revision int64
}

// Option configures a Calendar at construction.
type Option func(*Calendar)

// WithName sets a display name.
func WithName(name string) Option {
	return func(c *Calendar) { c.name = name }
}

// WithUnspecifiedTimeWorking sets the default classification for time
// covered by no interval. Default: working.
func WithUnspecifiedTimeWorking(working bool) Option {
	return func(c *Calendar) { c.unspecifiedWorking = working }
}

// New creates an empty calendar. With no intervals every instant takes
// the unspecified-time classification.
func New(id model.CalendarID, opts ...Option) *Calendar {
	c := &Calendar{id: id, unspecifiedWorking: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the calendar's identity.
func (c *Calendar) ID() model.CalendarID { return c.id }

// Name returns the display name.
func (c *Calendar) Name() string { return c.name }

// UnspecifiedTimeIsWorking returns the default classification.
func (c *Calendar) UnspecifiedTimeIsWorking() bool { return c.unspecifiedWorking }

// Revision returns the mutation counter. Any cached classification is
// stale once the revision moves.
func (c *Calendar) Revision() int64 { return c.revision }

// Intervals returns the registered intervals in registration order.
func (c *Calendar) Intervals() []*Interval { return c.intervals }

// AddStaticInterval registers an absolute [start, end) interval.
// Registration order is significant: the last-registered interval
// covering an instant decides its classification.
func (c *Calendar) AddStaticInterval(start, end time.Time, working bool) error {
	if !end.After(start) {
		return &ConfigurationError{
			CalendarID: string(c.id),
			Reason:     fmt.Sprintf("static interval end %s not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		}
	}
	c.intervals = append(c.intervals, &Interval{
		seq:     c.nextSeq,
		working: working,
		start:   start.UTC(),
		end:     end.UTC(),
	})
	c.nextSeq++
	c.revision++
	return nil
}

// AddRecurrentInterval compiles and registers a recurrence rule.
// Malformed rules fail here, synchronously, with a *ConfigurationError;
// they are never deferred to classification time.
func (c *Calendar) AddRecurrentInterval(rule string, working bool) error {
	r, err := ParseRecurrence(rule)
	if err != nil {
		if ce, ok := err.(*ConfigurationError); ok {
			ce.CalendarID = string(c.id)
		}
		return err
	}
	if r.empty() {
		return &ConfigurationError{CalendarID: string(c.id), Rule: rule, Reason: "rule matches no days"}
	}
	c.intervals = append(c.intervals, &Interval{
		seq:     c.nextSeq,
		working: working,
		recur:   r,
		rule:    rule,
	})
	c.nextSeq++
	c.revision++
	return nil
}

// IsWorkingTime classifies a single instant. Deterministic across
// repeated calls absent mutation.
func (c *Calendar) IsWorkingTime(t time.Time) bool {
	return c.classify(t.UTC())
}

// classify applies last-registered-wins precedence.
func (c *Calendar) classify(t time.Time) bool {
	for i := len(c.intervals) - 1; i >= 0; i-- {
		if c.intervals[i].covers(t) {
			return c.intervals[i].working
		}
	}
	return c.unspecifiedWorking
}

// nextBoundary returns the earliest instant strictly after t at which
// any interval's coverage changes.
func (c *Calendar) nextBoundary(t time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, iv := range c.intervals {
		if b, ok := iv.nextBoundary(t); ok {
			if !found || b.Before(best) {
				best, found = b, true
			}
		}
	}
	return best, found
}

// prevBoundaryBefore returns the latest instant strictly before t at
// which any interval's coverage changes.
func (c *Calendar) prevBoundaryBefore(t time.Time) (time.Time, bool) {
	probe := t.Add(-time.Nanosecond)
	var best time.Time
	found := false
	for _, iv := range c.intervals {
		if b, ok := iv.prevBoundary(probe); ok {
			if !found || b.After(best) {
				best, found = b, true
			}
		}
	}
	return best, found
}

// NextWorkingInstant returns the earliest (Forward) or latest
// (Backward) instant at which working time touches t. Forward: the
// earliest instant >= t with a working classification. Backward: the
// latest instant <= t with working time immediately before it.
func (c *Calendar) NextWorkingInstant(t time.Time, dir model.Direction) (time.Time, error) {
	t = t.UTC()
	if dir == model.Backward {
		return c.prevWorkingInstant(t)
	}
	cur := t
	for i := 0; i < walkBudget; i++ {
		if c.classify(cur) {
			return cur, nil
		}
		b, ok := c.nextBoundary(cur)
		if !ok {
			// Classification is constant from here on, and it is
			// non-working.
			return time.Time{}, &ExhaustedError{Op: "nextWorkingInstant", Since: t.Format(time.RFC3339)}
		}
		cur = b
	}
	return time.Time{}, &ExhaustedError{Op: "nextWorkingInstant", Since: t.Format(time.RFC3339)}
}

func (c *Calendar) prevWorkingInstant(t time.Time) (time.Time, error) {
	cur := t
	for i := 0; i < walkBudget; i++ {
		// Working immediately before cur?
		if c.classify(cur.Add(-time.Nanosecond)) {
			return cur, nil
		}
		b, ok := c.prevBoundaryBefore(cur)
		if !ok {
			return time.Time{}, &ExhaustedError{Op: "prevWorkingInstant", Since: t.Format(time.RFC3339)}
		}
		cur = b
	}
	return time.Time{}, &ExhaustedError{Op: "prevWorkingInstant", Since: t.Format(time.RFC3339)}
}

// DurationOfWorkingTime integrates the working classification over
// [start, end). A zero-length or inverted range yields 0; a range
// entirely non-working yields 0.
func (c *Calendar) DurationOfWorkingTime(start, end time.Time) (time.Duration, error) {
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return 0, nil
	}
	var total time.Duration
	cur := start
	for i := 0; i < walkBudget; i++ {
		if !cur.Before(end) {
			return total, nil
		}
		segEnd := end
		if b, ok := c.nextBoundary(cur); ok && b.Before(end) {
			segEnd = b
		}
		if c.classify(cur) {
			total += segEnd.Sub(cur)
		}
		cur = segEnd
	}
	return 0, &ExhaustedError{Op: "durationOfWorkingTime", Since: start.Format(time.RFC3339)}
}

// AddWorkingDuration returns the instant reached by consuming d of
// working time starting at start. Negative d walks backward. Zero d
// returns start unchanged.
func (c *Calendar) AddWorkingDuration(start time.Time, d time.Duration) (time.Time, error) {
	start = start.UTC()
	if d == 0 {
		return start, nil
	}
	if d < 0 {
		return c.subtractWorkingDuration(start, -d)
	}
	cur := start
	remaining := d
	for i := 0; i < walkBudget; i++ {
		b, ok := c.nextBoundary(cur)
		if !ok {
			// Constant classification from cur onward.
			if c.classify(cur) {
				return cur.Add(remaining), nil
			}
			return time.Time{}, &ExhaustedError{Op: "addWorkingDuration", Since: start.Format(time.RFC3339)}
		}
		if c.classify(cur) {
			span := b.Sub(cur)
			if span >= remaining {
				return cur.Add(remaining), nil
			}
			remaining -= span
		}
		cur = b
	}
	return time.Time{}, &ExhaustedError{Op: "addWorkingDuration", Since: start.Format(time.RFC3339)}
}

func (c *Calendar) subtractWorkingDuration(start time.Time, d time.Duration) (time.Time, error) {
	cur := start
	remaining := d
	for i := 0; i < walkBudget; i++ {
		b, ok := c.prevBoundaryBefore(cur)
		if !ok {
			if c.classify(cur.Add(-time.Nanosecond)) {
				return cur.Add(-remaining), nil
			}
			return time.Time{}, &ExhaustedError{Op: "subtractWorkingDuration", Since: start.Format(time.RFC3339)}
		}
		if c.classify(cur.Add(-time.Nanosecond)) {
			span := cur.Sub(b)
			if span >= remaining {
				return cur.Add(-remaining), nil
			}
			remaining -= span
		}
		cur = b
	}
	return time.Time{}, &ExhaustedError{Op: "subtractWorkingDuration", Since: start.Format(time.RFC3339)}
}
