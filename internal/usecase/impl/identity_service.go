// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
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

// maxGenerateAttempts bounds the mint-and-retry loops for codes and
// connection ids. With the configured alphabets the chance of a single
// collision is already tiny; hitting the cap means the store is close to
// saturated and retrying further would only burn round trips.
const maxGenerateAttempts = 64

// identityService implements the IdentityUsecase interface.
type identityService struct {
	codeStore    repository.VerificationCodeRepository
	connStore    repository.ConnectionRepository
	generator    service.CodeGenerator
	tokenService service.TokenService
	publisher    service.EventPublisher
	authCfg      *config.AuthConfig
	logger       *slog.Logger
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	CodeStore    repository.VerificationCodeRepository
	ConnStore    repository.ConnectionRepository
	Generator    service.CodeGenerator
	TokenService service.TokenService
	Publisher    service.EventPublisher
	Config       *config.Config
	Logger       *slog.Logger
}

// NewIdentityService is the constructor for identityService. It receives all dependencies as interfaces.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	return &identityService{
		codeStore:    params.CodeStore,
		connStore:    params.ConnStore,
		generator:    params.Generator,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		authCfg:      params.Config.Auth,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestCode issues a fresh one-time code for the user. Any code the user
// already holds is evicted first, so at most one code per user is ever live.
func (srv *identityService) RequestCode(ctx context.Context, input usecase.RequestCodeInput) (*usecase.RequestCodeOutput, error) {
	if input.UserID == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id must not be empty")
	}

	if err := srv.codeStore.PopByUserID(ctx, input.UserID); err != nil {
		srv.log(ctx).Error("Failed to evict previous verification code", slog.String("userID", input.UserID), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to evict previous code")
	}

	code, err := srv.placeFreshCode(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, service.EventCodeIssued, input.UserID, map[string]string{
		"code": code,
		"ttl":  srv.authCfg.CodeTTL.String(),
	})

	srv.log(ctx).Debug("Verification code issued", slog.String("userID", input.UserID))

	return &usecase.RequestCodeOutput{Code: code, TTL: srv.authCfg.CodeTTL}, nil
}

// placeFreshCode generates code values until one lands in the store without
// colliding with another user's live code.
func (srv *identityService) placeFreshCode(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := srv.generator.Generate(srv.authCfg.CodeAlphabet, srv.authCfg.CodeLength)

		err := srv.codeStore.Put(ctx, userID, code, srv.authCfg.CodeTTL)
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		if err != nil {
			srv.log(ctx).Error("Failed to store verification code", slog.String("userID", userID), slog.Any("error", err))

			return "", domainerrors.ErrStoreUnavailable.WrapMessage("failed to store verification code")
		}

		return code, nil
	}

	srv.log(ctx).Error("Exhausted code generation attempts", slog.String("userID", userID), slog.Int("attempts", maxGenerateAttempts))

	return "", domainerrors.ErrStoreUnavailable.WrapMessage("could not place a unique verification code")
}

// SignIn consumes a code and opens a new connection for its owner.
func (srv *identityService) SignIn(ctx context.Context, input usecase.SignInInput) (*usecase.SessionOutput, error) {
	if input.Code == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("code must not be empty")
	}

	userID, err := srv.codeStore.Consume(ctx, input.Code)
	if errors.Is(err, repository.ErrCodeNotFound) {
		srv.log(ctx).Warn("Sign-in with unknown or expired code")

		return nil, domainerrors.ErrInvalidCode
	}
	if err != nil {
		srv.log(ctx).Error("Failed to consume verification code", slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to consume verification code")
	}

	out, err := srv.openConnection(ctx, userID, input.Info)
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, service.EventConnectionOpened, userID, map[string]string{
		"os":      input.Info.OS,
		"browser": input.Info.Browser,
	})

	srv.log(ctx).Info("User signed in", slog.String("userID", userID))

	return out, nil
}

// RefreshToken rotates a connection. The presented token is removed before
// its replacement is created, so a token can never be redeemed twice.
func (srv *identityService) RefreshToken(ctx context.Context, input usecase.RefreshInput) (*usecase.SessionOutput, error) {
	if input.UserID == "" || input.RefreshToken == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id and refresh token must not be empty")
	}

	conn, err := srv.connStore.GetByID(ctx, input.RefreshToken)
	if errors.Is(err, repository.ErrConnectionNotFound) {
		srv.log(ctx).Warn("Refresh with unknown or expired token", slog.String("userID", input.UserID))

		return nil, domainerrors.ErrInvalidRefreshToken
	}
	if err != nil {
		srv.log(ctx).Error("Failed to load connection for refresh", slog.String("userID", input.UserID), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to load connection")
	}

	// A token owned by someone else is reported exactly like an unknown one
	// so a stolen token cannot be used to probe another user's sessions.
	if conn.UserID != input.UserID {
		srv.log(ctx).Warn("Refresh token owner mismatch", slog.String("userID", input.UserID), slog.String("ownerID", conn.UserID))

		return nil, domainerrors.ErrInvalidRefreshToken
	}

	if err := srv.connStore.RemoveByID(ctx, conn.ID); err != nil {
		srv.log(ctx).Error("Failed to remove rotated connection", slog.String("userID", input.UserID), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to remove rotated connection")
	}

	out, err := srv.openConnection(ctx, input.UserID, input.Info)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Connection rotated", slog.String("userID", input.UserID))

	return out, nil
}

// CloseConnection terminates one of the caller's connections.
func (srv *identityService) CloseConnection(ctx context.Context, input usecase.CloseConnectionInput) error {
	if input.UserID == "" || input.ConnectionID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("user id and connection id must not be empty")
	}

	conn, err := srv.connStore.GetByID(ctx, input.ConnectionID)
	if errors.Is(err, repository.ErrConnectionNotFound) {
		return domainerrors.ErrConnectionNotFound
	}
	if err != nil {
		srv.log(ctx).Error("Failed to load connection for close", slog.String("userID", input.UserID), slog.Any("error", err))

		return domainerrors.ErrStoreUnavailable.WrapMessage("failed to load connection")
	}

	if conn.UserID != input.UserID {
		srv.log(ctx).Warn("Close attempt on another user's connection", slog.String("userID", input.UserID), slog.String("ownerID", conn.UserID))

		return domainerrors.ErrConnectionNotFound
	}

	if err := srv.connStore.RemoveByID(ctx, conn.ID); err != nil {
		srv.log(ctx).Error("Failed to remove connection", slog.String("userID", input.UserID), slog.Any("error", err))

		return domainerrors.ErrStoreUnavailable.WrapMessage("failed to remove connection")
	}

	srv.log(ctx).Info("Connection closed", slog.String("userID", input.UserID))

	return nil
}

// ListConnections returns one page of the caller's live connections, newest first.
func (srv *identityService) ListConnections(ctx context.Context, input usecase.ListConnectionsInput) (*entity.ConnectionPage, error) {
	if input.UserID == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("user id must not be empty")
	}
	if input.PageIndex < 0 || input.PageSize < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("page index and page size must not be negative")
	}

	page, err := srv.connStore.ListByUserID(ctx, input.UserID, input.PageIndex, input.PageSize)
	if err != nil {
		srv.log(ctx).Error("Failed to list connections", slog.String("userID", input.UserID), slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to list connections")
	}

	return page, nil
}

// openConnection mints a fresh connection id, persists the connection and
// issues the paired access token. Id collisions are retried; the per-user
// capacity limit is terminal.
func (srv *identityService) openConnection(ctx context.Context, userID string, info entity.ConnectionInfo) (*usecase.SessionOutput, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		conn := &entity.Connection{
			ID:        srv.generator.Generate(srv.authCfg.TokenAlphabet, srv.authCfg.TokenLength),
			UserID:    userID,
			Info:      info,
			CreatedAt: time.Now(),
		}

		err := srv.connStore.Create(ctx, conn)
		if errors.Is(err, repository.ErrConnectionExists) {
			continue
		}
		if errors.Is(err, repository.ErrConnectionLimit) {
			srv.log(ctx).Warn("Connection limit reached", slog.String("userID", userID))

			return nil, domainerrors.ErrConnectionLimit
		}
		if err != nil {
			srv.log(ctx).Error("Failed to create connection", slog.String("userID", userID), slog.Any("error", err))

			return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to create connection")
		}

		accessToken, err := srv.tokenService.IssueAccessToken(userID)
		if err != nil {
			// The connection was stored but no credential pair exists yet,
			// so remove it again.
			if removeErr := srv.connStore.RemoveByID(ctx, conn.ID); removeErr != nil {
				srv.log(ctx).Warn("Failed to remove connection after token failure", slog.String("userID", userID), slog.Any("error", removeErr))
			}
			srv.log(ctx).Error("Failed to issue access token", slog.String("userID", userID), slog.Any("error", err))

			return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue access token")
		}

		return &usecase.SessionOutput{AccessToken: accessToken, RefreshToken: conn.ID}, nil
	}

	srv.log(ctx).Error("Exhausted connection id generation attempts", slog.String("userID", userID), slog.Int("attempts", maxGenerateAttempts))

	return nil, domainerrors.ErrStoreUnavailable.WrapMessage("could not place a unique connection id")
}

// publish emits a domain event. Publishing failures never fail the request.
func (srv *identityService) publish(ctx context.Context, eventType, userID string, payload map[string]string) {
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
