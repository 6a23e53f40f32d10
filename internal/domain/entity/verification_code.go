package entity

import "time"

// VerificationCode is a short-lived, single-use secret that authorizes
// creating a session. At most one live code exists per user: requesting a
// new one evicts the previous code together with its reverse index.
type VerificationCode struct {
	Code   string // Lookup key, generated from a restricted alphabet.
	UserID string // The requester.
	TTL    time.Duration
}
