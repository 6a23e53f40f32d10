// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"ziplink/internal/domain/entity"
	"ziplink/internal/domain/repository"
	"ziplink/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// linkRepository implements the repository.LinkRepository interface.
type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository is the constructor for linkRepository.
func NewLinkRepository(db *gorm.DB) repository.LinkRepository {
	return &linkRepository{db: db}
}

// Create persists a new link. The unique index on alias is the collision
// detector backing the mint-and-retry loop.
func (repo *linkRepository) Create(ctx context.Context, link *entity.Link) error {
	linkM := fromLinkDomain(link)

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAliasTaken
		}
		if isNotNullConstraintViolation(err) {
			return errors.Wrap(err, "missing required link fields")
		}

		return errors.Wrap(err, "failed to create link")
	}

	// Update the entity with generated values
	link.ID = linkM.ID
	link.CreatedAt = linkM.CreatedAt

	return nil
}

// FindByAlias resolves an alias, or ErrLinkNotFound.
func (repo *linkRepository) FindByAlias(ctx context.Context, alias string) (*entity.Link, error) {
	var linkM model.LinkModel

	err := repo.db.WithContext(ctx).
		Where("alias = ?", alias).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLinkNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toLinkDomain(&linkM), nil
}

// FindByUserID returns the links minted by a user, newest first.
func (repo *linkRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Link, error) {
	var linkModels []*model.LinkModel

	err := repo.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&linkModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	links := make([]*entity.Link, 0, len(linkModels))
	for _, linkM := range linkModels {
		links = append(links, toLinkDomain(linkM))
	}

	return links, nil
}

// DeleteByAlias removes a link. Idempotent no-op if absent.
func (repo *linkRepository) DeleteByAlias(ctx context.Context, alias string) error {
	err := repo.db.WithContext(ctx).
		Where("alias = ?", alias).
		Delete(&model.LinkModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete link")
	}

	return nil
}

func fromLinkDomain(link *entity.Link) *model.LinkModel {
	return &model.LinkModel{
		ID:        link.ID,
		Alias:     link.Alias,
		URL:       link.URL,
		CreatedBy: link.CreatedBy,
		CreatedAt: link.CreatedAt,
	}
}

func toLinkDomain(linkM *model.LinkModel) *entity.Link {
	return &entity.Link{
		ID:        linkM.ID,
		Alias:     linkM.Alias,
		URL:       linkM.URL,
		CreatedBy: linkM.CreatedBy,
		CreatedAt: linkM.CreatedAt,
	}
}
