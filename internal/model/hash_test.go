package model

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithDomain(t *testing.T) {
	h := sha256.Sum256([]byte(DomainSchedule + "\x00payload"))
	assert.Equal(t, hex.EncodeToString(h[:]), HashWithDomain(DomainSchedule, []byte("payload")))

	// The separator keeps the domain/data boundary unambiguous.
	assert.NotEqual(t,
		HashWithDomain("ab", []byte("c")),
		HashWithDomain("a", []byte("bc")))

	// Same data under different domains digests differently.
	assert.NotEqual(t,
		HashWithDomain(DomainProjectState, []byte("x")),
		HashWithDomain(DomainSchedule, []byte("x")))
}

func TestStateDigest_IgnoresMapOrdering(t *testing.T) {
	a, err := StateDigest(map[string]any{"x": 1, "y": 2, "z": 3})
	require.NoError(t, err)
	b, err := StateDigest(map[string]any{"z": 3, "y": 2, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStateDigest_PropagatesEncodingErrors(t *testing.T) {
	_, err := StateDigest(map[string]any{"x": 1.5})
	assert.Error(t, err)
}
