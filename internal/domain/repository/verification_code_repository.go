// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Domain-specific errors for verification-code storage.
var (
	// ErrCodeTaken is returned when a code value already belongs to another
	// live request. The caller retries with fresh randomness.
	ErrCodeTaken = errors.New("verification code already taken")
	// ErrCodeNotFound is returned when a code does not exist, has expired,
	// or its two-key state is only partially present.
	ErrCodeNotFound = errors.New("verification code not found")
)

// VerificationCodeRepository stores one-time sign-in codes.
//
// Implementations keep two linked keys per live code: code -> userID and a
// prefixed userID -> code reverse index, written with the same TTL. A reader
// observing only one of the two keys must treat the code as not found; the
// backing store offers per-key atomicity only, never cross-key transactions.
type VerificationCodeRepository interface {
	// Put writes both keys for a fresh code. Returns ErrCodeTaken when the
	// code value collides with another user's live code.
	Put(ctx context.Context, userID, code string, ttl time.Duration) error

	// PopByUserID removes the user's current code and its reverse index,
	// if any. Absence is a no-op, not an error.
	PopByUserID(ctx context.Context, userID string) error

	// Consume resolves a code to its user and deletes both keys, making the
	// code single-use. Returns ErrCodeNotFound for unknown or expired codes.
	Consume(ctx context.Context, code string) (userID string, err error)
}
