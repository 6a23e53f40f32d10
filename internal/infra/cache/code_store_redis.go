package cache

import (
	"context"
	"log/slog"
	"time"

	"ziplink/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix     = "vcode:"
	codeUserKeyPrefix = "vcode:user:"
)

// redisCodeStore implements VerificationCodeRepository on Redis.
//
// Each live code occupies two keys written with the same TTL:
// vcode:<code> -> userID and vcode:user:<userID> -> code. The pair is written
// sequentially with cleanup on partial failure; readers treat a dangling half
// as not found.
type redisCodeStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCodeStore creates a Redis-backed verification-code store.
func NewRedisCodeStore(client *redis.Client, logger *slog.Logger) repository.VerificationCodeRepository {
	return &redisCodeStore{client: client, logger: logger}
}

func codeKey(code string) string {
	return codeKeyPrefix + code
}

func codeUserKey(userID string) string {
	return codeUserKeyPrefix + userID
}

// Put claims the forward key with SET NX so a collision with another user's
// live code surfaces as ErrCodeTaken at write time.
func (s *redisCodeStore) Put(ctx context.Context, userID, code string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, codeKey(code), userID, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "failed to write verification code")
	}
	if !ok {
		return repository.ErrCodeTaken
	}

	if err := s.client.Set(ctx, codeUserKey(userID), code, ttl).Err(); err != nil {
		// Roll back the forward key so the code value is not orphaned.
		if delErr := s.client.Del(ctx, codeKey(code)).Err(); delErr != nil {
			s.logger.Warn("failed to roll back verification code after partial write",
				slog.String("user_id", userID),
				slog.Any("error", delErr),
			)
		}

		return errors.Wrap(err, "failed to write verification code index")
	}

	return nil
}

// PopByUserID removes the user's current code, if any.
func (s *redisCodeStore) PopByUserID(ctx context.Context, userID string) error {
	code, err := s.client.GetDel(ctx, codeUserKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to pop verification code index")
	}

	if err := s.client.Del(ctx, codeKey(code)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete verification code")
	}

	return nil
}

// Consume claims the forward key atomically with GETDEL, making the code
// single-use even under concurrent sign-in attempts, then clears the index.
func (s *redisCodeStore) Consume(ctx context.Context, code string) (string, error) {
	userID, err := s.client.GetDel(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrCodeNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to consume verification code")
	}

	if err := s.client.Del(ctx, codeUserKey(userID)).Err(); err != nil {
		// The forward key is already gone, so the code cannot be replayed;
		// the dangling index expires with its TTL.
		s.logger.Warn("failed to delete verification code index after consume",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return userID, nil
}
