package repository

import (
	"context"

	"ziplink/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for connection storage.
var (
	// ErrConnectionExists is returned when a connection id is already in use.
	// The caller retries with a freshly generated id.
	ErrConnectionExists = errors.New("connection id already exists")
	// ErrConnectionNotFound is returned when a connection is not found.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrConnectionLimit is returned when the owner already holds the maximum
	// number of live connections. Terminal, never retried.
	ErrConnectionLimit = errors.New("connection limit reached")
)

// ConnectionRepository persists sessions keyed by their refresh-token id.
// Records expire on their own after the configured connection lifetime.
type ConnectionRepository interface {
	// Create persists a new connection. Returns ErrConnectionExists on id
	// collision and ErrConnectionLimit when the owner is at capacity.
	Create(ctx context.Context, conn *entity.Connection) error

	// GetByID retrieves a connection, or ErrConnectionNotFound.
	GetByID(ctx context.Context, id string) (*entity.Connection, error)

	// RemoveByID deletes a connection. Idempotent no-op if absent.
	RemoveByID(ctx context.Context, id string) error

	// ListByUserID returns one page of the user's connections.
	// pageCount is ceil(total/pageSize) for pageSize > 0, else 0; an
	// out-of-range pageIndex yields an empty item list, never an error.
	ListByUserID(ctx context.Context, userID string, pageIndex, pageSize int) (*entity.ConnectionPage, error)
}
