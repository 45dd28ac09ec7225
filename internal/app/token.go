// Package app holds the application services and business logic.
package app

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
)

// opaqueIDAlphabet drops 0, 1, and o to keep identifiers readable when
// retyped. Sampling takes the top 5 bits of each random byte, so only the
// first 32 characters are reachable; the final one is never emitted.
const opaqueIDAlphabet = "abcdefghijklmnpqrstuvwxyz23456789"

const opaqueIDLength = 32

// GenerateOpaqueID returns a 32-character identifier drawn from
// opaqueIDAlphabet using crypto/rand (160 bits of entropy).
func GenerateOpaqueID() (string, error) {
	bytes := make([]byte, opaqueIDLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	out := make([]byte, opaqueIDLength)
	for i, b := range bytes {
		out[i] = opaqueIDAlphabet[b>>3]
	}
	return string(out), nil
}

// HashSecret returns the SHA-256 digest of a session secret. Only the digest
// is ever persisted.
func HashSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// ConstantTimeEqual compares two digests in time independent of where they
// first differ. Returns false for mismatched lengths.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
