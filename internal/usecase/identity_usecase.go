// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"ziplink/internal/domain/entity"
)

// --- Input DTOs ---

// RequestCodeInput defines the data required to issue a verification code.
type RequestCodeInput struct {
	UserID string
}

// SignInInput defines the data required to exchange a code for a session.
type SignInInput struct {
	Code string
	Info entity.ConnectionInfo
}

// RefreshInput defines the data required to rotate a session.
type RefreshInput struct {
	UserID       string
	RefreshToken string
	Info         entity.ConnectionInfo
}

// CloseConnectionInput identifies a single session to terminate.
type CloseConnectionInput struct {
	UserID       string
	ConnectionID string
}

// ListConnectionsInput selects one page of a user's sessions.
type ListConnectionsInput struct {
	UserID    string
	PageIndex int
	PageSize  int
}

// --- Output DTOs ---

// RequestCodeOutput returns the freshly issued code and its lifetime.
type RequestCodeOutput struct {
	Code string
	TTL  time.Duration
}

// SessionOutput returns the credential pair for a newly opened or rotated
// connection. The refresh token is the connection's id.
type SessionOutput struct {
	AccessToken  string
	RefreshToken string
}

// IdentityUsecase defines the interface for verification-code sign-in and
// session lifecycle operations. This is the contract that the delivery layer
// (e.g., API handlers) will depend on.
type IdentityUsecase interface {
	// RequestCode issues a one-time code for the user, replacing any code
	// the user already holds.
	RequestCode(ctx context.Context, input RequestCodeInput) (*RequestCodeOutput, error)

	// SignIn consumes a code and opens a new connection.
	SignIn(ctx context.Context, input SignInInput) (*SessionOutput, error)

	// RefreshToken rotates a connection: the presented refresh token is
	// invalidated and a new credential pair is returned.
	RefreshToken(ctx context.Context, input RefreshInput) (*SessionOutput, error)

	// CloseConnection terminates one of the caller's connections.
	CloseConnection(ctx context.Context, input CloseConnectionInput) error

	// ListConnections returns one page of the caller's live connections,
	// newest first.
	ListConnections(ctx context.Context, input ListConnectionsInput) (*entity.ConnectionPage, error)
}
