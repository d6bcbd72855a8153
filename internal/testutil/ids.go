package testutil

import "sync"

// FixedIDGenerator returns predetermined identifiers in order.
//
// Tests and golden snapshots need byte-identical output across runs,
// which rules out the UUIDv7 generator the project uses in production.
// A test declares the exact IDs it expects to be minted and gets a
// panic if the code under test asks for more.
//
// Implements project.IDGenerator.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := testutil.NewFixedIDGenerator("dep-1", "dep-2")
//	gen.Generate() // "dep-1"
//	gen.Generate() // "dep-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next predetermined identifier.
//
// Panics when all ids are consumed: the test created more records than
// it declared, a misconfiguration worth failing fast on.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining returns how many predetermined ids are left unconsumed.
// Tests assert zero to prove every declared record was created.
func (g *FixedIDGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
