package main

import (
	"context"
	"log/slog"
	"os"

	"ziplink/config"
	"ziplink/internal/delivery"
	"ziplink/internal/delivery/http"
	"ziplink/internal/delivery/http/middleware"
	"ziplink/internal/delivery/http/router/handler"
	"ziplink/internal/domain/repository"
	"ziplink/internal/domain/service"
	"ziplink/internal/infra/auth"
	"ziplink/internal/infra/cache"
	logs "ziplink/internal/infra/log"
	"ziplink/internal/infra/persistence/postgres"
	"ziplink/internal/infra/pubsub"
	"ziplink/internal/infra/qrcode"
	"ziplink/internal/infra/random"
	"ziplink/internal/usecase/impl"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		cache.NewClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewLinkRepository,
			newCodeStore,
			newConnectionStore,
		),
	)
}

// newCodeStore picks the Redis code store when Redis is configured and the
// in-memory store otherwise.
func newCodeStore(client *redis.Client, logger *slog.Logger) repository.VerificationCodeRepository {
	if client == nil {
		return cache.NewMemoryCodeStore()
	}

	return cache.NewRedisCodeStore(client, logger)
}

// newConnectionStore picks the Redis connection store when Redis is
// configured and the in-memory store otherwise.
func newConnectionStore(client *redis.Client, cfg *config.Config, logger *slog.Logger) repository.ConnectionRepository {
	if client == nil {
		return cache.NewMemoryConnectionStore(cfg.Auth.ConnectionLifetime, cfg.Auth.MaxConnections)
	}

	return cache.NewRedisConnectionStore(client, logger, cfg.Auth.ConnectionLifetime, cfg.Auth.MaxConnections)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			random.NewGenerator,
			pubsub.NewEventPublisher,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewIdentityService,
			impl.NewLinkService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewIdentityHandler,
			handler.NewLinkHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
