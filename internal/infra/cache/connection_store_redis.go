package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ziplink/internal/domain/entity"
	"ziplink/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	connKeyPrefix      = "conn:"
	connIndexKeyPrefix = "conn:user:"
)

// redisConnectionStore implements ConnectionRepository on Redis.
//
// Connections live under conn:<id> with the configured lifetime as TTL; a
// per-user sorted set conn:user:<userID> (scored by creation time) supports
// listing and the connection limit. Index entries whose record has expired
// are pruned lazily on read.
type redisConnectionStore struct {
	client   *redis.Client
	logger   *slog.Logger
	lifetime time.Duration
	maxConns int
}

// NewRedisConnectionStore creates a Redis-backed connection store.
// maxConns of zero disables the per-user connection limit.
func NewRedisConnectionStore(client *redis.Client, logger *slog.Logger, lifetime time.Duration, maxConns int) repository.ConnectionRepository {
	return &redisConnectionStore{
		client:   client,
		logger:   logger,
		lifetime: lifetime,
		maxConns: maxConns,
	}
}

func connKey(id string) string {
	return connKeyPrefix + id
}

func connIndexKey(userID string) string {
	return connIndexKeyPrefix + userID
}

// Create claims the connection id with SET NX; a collision surfaces as
// ErrConnectionExists so the caller can retry with a fresh id. The capacity
// check runs first so a full user gets the terminal error, not a retry.
//
// The store guarantees per-key atomicity only. Two accepted races follow:
// concurrent creates for a user one below the limit can both pass the
// capacity check and briefly exceed it, and a failed index write leaves a
// live connection invisible to ListByUserID and the capacity count until it
// expires. Neither breaks the id uniqueness the SET NX arbitrates.
func (s *redisConnectionStore) Create(ctx context.Context, conn *entity.Connection) error {
	if s.maxConns > 0 {
		live, err := s.liveConnectionIDs(ctx, conn.UserID)
		if err != nil {
			return err
		}
		if len(live) >= s.maxConns {
			return repository.ErrConnectionLimit
		}
	}

	data, err := json.Marshal(conn)
	if err != nil {
		return errors.Wrap(err, "failed to marshal connection")
	}

	ok, err := s.client.SetNX(ctx, connKey(conn.ID), data, s.lifetime).Result()
	if err != nil {
		return errors.Wrap(err, "failed to write connection")
	}
	if !ok {
		return repository.ErrConnectionExists
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, connIndexKey(conn.UserID), redis.Z{
		Score:  float64(conn.CreatedAt.UnixNano()),
		Member: conn.ID,
	})
	pipe.Expire(ctx, connIndexKey(conn.UserID), s.lifetime)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("failed to index connection",
			slog.String("user_id", conn.UserID),
			slog.Any("error", err),
		)
	}

	return nil
}

// GetByID retrieves a connection, or ErrConnectionNotFound.
func (s *redisConnectionStore) GetByID(ctx context.Context, id string) (*entity.Connection, error) {
	val, err := s.client.Get(ctx, connKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrConnectionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read connection")
	}

	var conn entity.Connection
	if err := json.Unmarshal([]byte(val), &conn); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal connection")
	}

	return &conn, nil
}

// RemoveByID deletes a connection and its index entry. Idempotent.
func (s *redisConnectionStore) RemoveByID(ctx context.Context, id string) error {
	val, err := s.client.GetDel(ctx, connKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to delete connection")
	}

	var conn entity.Connection
	if err := json.Unmarshal([]byte(val), &conn); err == nil {
		if err := s.client.ZRem(ctx, connIndexKey(conn.UserID), id).Err(); err != nil {
			s.logger.Warn("failed to unindex connection",
				slog.String("user_id", conn.UserID),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

// ListByUserID returns one page of a user's connections, newest first.
func (s *redisConnectionStore) ListByUserID(ctx context.Context, userID string, pageIndex, pageSize int) (*entity.ConnectionPage, error) {
	ids, err := s.liveConnectionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := &entity.ConnectionPage{
		Items:     []*entity.Connection{},
		PageIndex: pageIndex,
	}
	if pageSize > 0 {
		page.PageCount = (len(ids) + pageSize - 1) / pageSize
	}

	if pageSize <= 0 || pageIndex < 0 || pageIndex*pageSize >= len(ids) {
		return page, nil
	}

	start := pageIndex * pageSize
	end := min(start+pageSize, len(ids))

	for _, id := range ids[start:end] {
		conn, err := s.GetByID(ctx, id)
		if errors.Is(err, repository.ErrConnectionNotFound) {
			// Expired between the index read and here; skip.
			continue
		}
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, conn)
	}

	return page, nil
}

// liveConnectionIDs reads the user's index newest first, pruning entries
// whose record has already expired.
func (s *redisConnectionStore) liveConnectionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, connIndexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read connection index")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, connKey(id))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read connections")
	}

	live := make([]string, 0, len(ids))
	var stale []any
	for i, val := range vals {
		if val == nil {
			stale = append(stale, ids[i])

			continue
		}
		live = append(live, ids[i])
	}

	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, connIndexKey(userID), stale...).Err(); err != nil {
			s.logger.Warn("failed to prune stale connection index entries",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
	}

	return live, nil
}
