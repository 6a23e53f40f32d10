// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"ziplink/internal/domain/entity"
)

// CreateLinkInput defines the data required to mint a short link.
type CreateLinkInput struct {
	URL       string
	CreatedBy string
}

// CreateLinkOutput returns the minted link and its absolute short URL.
type CreateLinkOutput struct {
	Link     *entity.Link
	ShortURL string
}

// LinkUsecase defines the interface for short-link operations.
type LinkUsecase interface {
	// CreateLink mints a fresh alias for the URL and persists the mapping.
	CreateLink(ctx context.Context, input CreateLinkInput) (*CreateLinkOutput, error)

	// ResolveAlias returns the link behind an alias.
	ResolveAlias(ctx context.Context, alias string) (*entity.Link, error)

	// ListUserLinks returns the links minted by a user, newest first.
	ListUserLinks(ctx context.Context, userID string) ([]*entity.Link, error)

	// DeleteLink removes one of the caller's links.
	DeleteLink(ctx context.Context, userID, alias string) error

	// LinkQR renders a PNG QR code for an existing alias.
	LinkQR(ctx context.Context, alias string) ([]byte, error)
}
