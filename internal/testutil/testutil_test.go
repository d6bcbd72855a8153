package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedIDGenerator_ReturnsIDsInOrder(t *testing.T) {
	gen := NewFixedIDGenerator("a", "b", "c")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Equal(t, 1, gen.Remaining())
	assert.Equal(t, "c", gen.Generate())
	assert.Equal(t, 0, gen.Remaining())
}

func TestFixedIDGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedIDGenerator("only")
	gen.Generate()
	assert.Panics(t, func() { gen.Generate() })
}

func TestFrozenClock(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFrozenClock(start)
	assert.True(t, clock.Now().Equal(start))
	assert.True(t, clock.Now().Equal(start), "repeated reads do not drift")

	moved := clock.Advance(90 * time.Minute)
	assert.True(t, moved.Equal(start.Add(90*time.Minute)))
	assert.True(t, clock.Now().Equal(moved))

	clock.Set(start)
	assert.True(t, clock.Now().Equal(start))
}

func TestFrozenClock_NormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	clock := NewFrozenClock(time.Date(2024, 6, 1, 7, 0, 0, 0, est))
	now := clock.Now()
	require.Equal(t, time.UTC, now.Location())
	assert.Equal(t, 12, now.Hour())
}
