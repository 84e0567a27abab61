// Package auth provides the handshake key check for ClipGate.
// WHY a dedicated package: Both the listener and its tests need the same
// acceptance rule, and keeping it in one place guarantees the rule cannot
// drift between the production path and test fixtures.

package auth

import "crypto/subtle"

// ValidateKey reports whether the key a sender presented matches the
// configured accept key.
//
// The match is literal: case-sensitive, full-string, no patterns. A prefix,
// suffix, substring, or case variant of the real key is rejected.
//
// WHY constant-time comparison:
// A naive == short-circuits on the first mismatched byte, so an attacker on
// the same network segment could recover the key byte by byte from response
// timing. The protocol only aims to stop accidental cross-talk, but
// crypto/subtle costs nothing here and removes the side channel outright.
// ConstantTimeCompare returns 0 immediately on length mismatch, which leaks
// only the key length; acceptable for a shared static token.
func ValidateKey(expected, presented string) bool {
	// An empty expected key means auth is misconfigured; an empty presented
	// key means the sender did not authenticate. Reject both.
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
