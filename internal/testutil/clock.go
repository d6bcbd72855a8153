package testutil

import (
	"sync"
	"time"
)

// FrozenClock is a controllable wall clock for tests.
//
// The store stamps rows with a save time and the harness records
// scenario run times; both take a now-func so tests can freeze time
// and get reproducible output.
//
// Thread-safety: all methods are safe for concurrent use.
type FrozenClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFrozenClock creates a clock frozen at t.
func NewFrozenClock(t time.Time) *FrozenClock {
	return &FrozenClock{now: t.UTC()}
}

// Now returns the frozen instant. Pass the method value as a now-func:
//
//	store.Open(path, store.WithNow(clock.Now))
func (c *FrozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FrozenClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to an absolute instant.
func (c *FrozenClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
