package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content digests. The version suffix allows the
// digest algorithm to change without colliding with old values.
const (
	DomainProjectState = "gantry/project-state/v1"
	DomainSchedule     = "gantry/schedule/v1"
)

// HashWithDomain computes a domain-separated SHA-256 digest.
// Format: SHA256(domain || 0x00 || data). The null separator prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateDigest computes the digest of a canonical-JSON-encodable value
// under the project-state domain. Tests use it to assert that committed
// state is byte-for-byte unchanged across failed validations.
func StateDigest(v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return HashWithDomain(DomainProjectState, data), nil
}
