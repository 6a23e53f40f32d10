// Package cache contains the key-value store implementations backing
// verification codes and connections. Redis is the production backend; the
// in-memory twins serve tests and local development. Both stores rely on
// per-key atomicity only and never assume cross-key transactions.
package cache

import (
	"context"
	"log/slog"

	"ziplink/config"
	"ziplink/internal/domain/lifecycle"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewClient creates the Redis client with ping-on-start and close-on-stop
// hooks. Returns a nil client when Redis is not configured; the store
// providers fall back to the in-memory implementations then.
func NewClient(params Params) (*redis.Client, error) {
	if params.Config.Redis == nil {
		params.Logger.Info("Redis not configured, stores fall back to memory")

		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     params.Config.Redis.Addr,
		Password: params.Config.Redis.Password,
		DB:       params.Config.Redis.DB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			params.Logger.Info("Redis connection established",
				slog.String("addr", params.Config.Redis.Addr),
			)

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
