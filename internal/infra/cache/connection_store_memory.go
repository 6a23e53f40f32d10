package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"ziplink/internal/domain/entity"
	"ziplink/internal/domain/repository"
)

// memoryConnectionStore is the in-memory twin of the Redis connection store.
type memoryConnectionStore struct {
	mu       sync.RWMutex
	byID     map[string]connRecord
	lifetime time.Duration
	maxConns int
}

type connRecord struct {
	conn      *entity.Connection
	expiresAt time.Time
}

// NewMemoryConnectionStore creates an in-memory connection store.
// maxConns of zero disables the per-user connection limit.
func NewMemoryConnectionStore(lifetime time.Duration, maxConns int) repository.ConnectionRepository {
	return &memoryConnectionStore{
		byID:     make(map[string]connRecord),
		lifetime: lifetime,
		maxConns: maxConns,
	}
}

func (s *memoryConnectionStore) Create(_ context.Context, conn *entity.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if s.maxConns > 0 && s.countLocked(conn.UserID, now) >= s.maxConns {
		return repository.ErrConnectionLimit
	}

	if rec, ok := s.byID[conn.ID]; ok && now.Before(rec.expiresAt) {
		return repository.ErrConnectionExists
	}

	copied := *conn
	s.byID[conn.ID] = connRecord{conn: &copied, expiresAt: now.Add(s.lifetime)}

	return nil
}

func (s *memoryConnectionStore) GetByID(_ context.Context, id string) (*entity.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok || time.Now().After(rec.expiresAt) {
		return nil, repository.ErrConnectionNotFound
	}

	copied := *rec.conn

	return &copied, nil
}

func (s *memoryConnectionStore) RemoveByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)

	return nil
}

func (s *memoryConnectionStore) ListByUserID(_ context.Context, userID string, pageIndex, pageSize int) (*entity.ConnectionPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var conns []*entity.Connection
	for _, rec := range s.byID {
		if rec.conn.UserID == userID && now.Before(rec.expiresAt) {
			copied := *rec.conn
			conns = append(conns, &copied)
		}
	}

	// Newest first, matching the Redis index ordering.
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].CreatedAt.After(conns[j].CreatedAt)
	})

	page := &entity.ConnectionPage{
		Items:     []*entity.Connection{},
		PageIndex: pageIndex,
	}
	if pageSize > 0 {
		page.PageCount = (len(conns) + pageSize - 1) / pageSize
	}

	if pageSize <= 0 || pageIndex < 0 || pageIndex*pageSize >= len(conns) {
		return page, nil
	}

	start := pageIndex * pageSize
	end := min(start+pageSize, len(conns))
	page.Items = conns[start:end]

	return page, nil
}

func (s *memoryConnectionStore) countLocked(userID string, now time.Time) int {
	count := 0
	for _, rec := range s.byID {
		if rec.conn.UserID == userID && now.Before(rec.expiresAt) {
			count++
		}
	}

	return count
}
