package repository

import (
	"context"

	"ziplink/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for link persistence.
var (
	// ErrAliasTaken is returned when a minted alias collides with an existing
	// link. The caller retries with fresh randomness.
	ErrAliasTaken = errors.New("link alias already taken")
	// ErrLinkNotFound is returned when no link exists for an alias.
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository persists short links in the relational store.
type LinkRepository interface {
	// Create persists a new link. Returns ErrAliasTaken on alias collision.
	Create(ctx context.Context, link *entity.Link) error

	// FindByAlias resolves an alias, or ErrLinkNotFound.
	FindByAlias(ctx context.Context, alias string) (*entity.Link, error)

	// FindByUserID returns the links minted by a user, newest first.
	FindByUserID(ctx context.Context, userID string) ([]*entity.Link, error)

	// DeleteByAlias removes a link. Idempotent no-op if absent.
	DeleteByAlias(ctx context.Context, alias string) error
}
