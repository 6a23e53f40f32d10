package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ziplink/config"
	deliverycontext "ziplink/internal/delivery/context"
	"ziplink/internal/domain/entity"
	domainerrors "ziplink/internal/domain/errors"
	"ziplink/internal/domain/repository"
	"ziplink/internal/domain/service"
	"ziplink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// linkService implements the LinkUsecase interface.
type linkService struct {
	linkRepo  repository.LinkRepository
	generator service.CodeGenerator
	qrService service.QRCodeService
	publisher service.EventPublisher
	linkCfg   *config.ShortLinkConfig
	logger    *slog.Logger
}

// LinkServiceParams holds dependencies for linkService, injected by Fx.
type LinkServiceParams struct {
	fx.In

	LinkRepo  repository.LinkRepository
	Generator service.CodeGenerator
	QRService service.QRCodeService
	Publisher service.EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewLinkService is the constructor for linkService.
func NewLinkService(params LinkServiceParams) usecase.LinkUsecase {
	return &linkService{
		linkRepo:  params.LinkRepo,
		generator: params.Generator,
		qrService: params.QRService,
		publisher: params.Publisher,
		linkCfg:   params.Config.ShortLink,
		logger:    params.Logger,
	}
}

func (srv *linkService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateLink mints a fresh alias for the URL and persists the mapping.
// Alias collisions are retried with new randomness; the unique index on the
// alias column is the arbiter.
func (srv *linkService) CreateLink(ctx context.Context, input usecase.CreateLinkInput) (*usecase.CreateLinkOutput, error) {
	parsed, err := url.ParseRequestURI(input.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("url must be absolute http or https")
	}

	link, err := srv.mintLink(ctx, input)
	if err != nil {
		return nil, err
	}

	shortURL := srv.shortURL(link.Alias)

	srv.publish(ctx, service.EventLinkCreated, input.CreatedBy, map[string]string{
		"alias":     link.Alias,
		"short_url": shortURL,
	})

	srv.log(ctx).Info("Link created", slog.String("alias", link.Alias), slog.String("createdBy", input.CreatedBy))

	return &usecase.CreateLinkOutput{Link: link, ShortURL: shortURL}, nil
}

func (srv *linkService) mintLink(ctx context.Context, input usecase.CreateLinkInput) (*entity.Link, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		link := &entity.Link{
			Alias:     srv.generator.Generate(srv.linkCfg.AliasAlphabet, srv.linkCfg.AliasLength),
			URL:       input.URL,
			CreatedBy: input.CreatedBy,
			CreatedAt: time.Now(),
		}

		err := srv.linkRepo.Create(ctx, link)
		if errors.Is(err, repository.ErrAliasTaken) {
			continue
		}
		if err != nil {
			srv.log(ctx).Error("Failed to create link", slog.Any("error", err))

			return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to create link")
		}

		return link, nil
	}

	srv.log(ctx).Error("Exhausted alias generation attempts", slog.Int("attempts", maxGenerateAttempts))

	return nil, domainerrors.ErrStoreUnavailable.WrapMessage("could not mint a unique alias")
}

// ResolveAlias returns the link behind an alias.
func (srv *linkService) ResolveAlias(ctx context.Context, alias string) (*entity.Link, error) {
	if alias == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("alias must not be empty")
	}

	link, err := srv.linkRepo.FindByAlias(ctx, alias)
	if errors.Is(err, repository.ErrLinkNotFound) {
		return nil, domainerrors.ErrLinkNotFound
	}
	if err != nil {
		srv.log(ctx).Error("Failed to resolve alias", slog.String("alias", alias), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to resolve alias")
	}

	return link, nil
}

// ListUserLinks returns the links minted by a user, newest first.
func (srv *linkService) ListUserLinks(ctx context.Context, userID string) ([]*entity.Link, error) {
	if userID == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id must not be empty")
	}

	links, err := srv.linkRepo.FindByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list links", slog.String("userID", userID), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to list links")
	}

	return links, nil
}

// DeleteLink removes one of the caller's links. A link owned by someone else
// is reported as not found.
func (srv *linkService) DeleteLink(ctx context.Context, userID, alias string) error {
	link, err := srv.ResolveAlias(ctx, alias)
	if err != nil {
		return err
	}

	if link.CreatedBy != userID {
		srv.log(ctx).Warn("Delete attempt on another user's link", slog.String("userID", userID), slog.String("alias", alias))

		return domainerrors.ErrLinkNotFound
	}

	if err := srv.linkRepo.DeleteByAlias(ctx, alias); err != nil {
		srv.log(ctx).Error("Failed to delete link", slog.String("alias", alias), slog.Any("error", err))

		return domainerrors.ErrStoreUnavailable.WrapMessage("failed to delete link")
	}

	srv.log(ctx).Info("Link deleted", slog.String("alias", alias), slog.String("userID", userID))

	return nil
}

// LinkQR renders a PNG QR code for an existing alias.
func (srv *linkService) LinkQR(ctx context.Context, alias string) ([]byte, error) {
	link, err := srv.ResolveAlias(ctx, alias)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateLinkQR(srv.shortURL(link.Alias))
	if err != nil {
		srv.log(ctx).Error("Failed to render QR code", slog.String("alias", alias), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to render QR code")
	}

	return png, nil
}

func (srv *linkService) shortURL(alias string) string {
	return strings.TrimRight(srv.linkCfg.BaseURL, "/") + "/" + alias
}

func (srv *linkService) publish(ctx context.Context, eventType, userID string, payload map[string]string) {
	if srv.publisher == nil {
		return
	}

	event := &service.DomainEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now(),
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
	}

	if err := srv.publisher.PublishEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish event", slog.String("type", eventType), slog.Any("error", err))
	}
}
