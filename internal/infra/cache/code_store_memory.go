package cache

import (
	"context"
	"sync"
	"time"

	"ziplink/internal/domain/repository"
)

// memoryCodeStore is the in-memory twin of the Redis code store, used by
// tests and local development. It keeps the same two-map shape so the
// single-active-code and single-use invariants are exercised identically.
type memoryCodeStore struct {
	mu     sync.Mutex
	byCode map[string]codeRecord // code -> record
	byUser map[string]string     // userID -> code
}

type codeRecord struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryCodeStore creates an in-memory verification-code store.
func NewMemoryCodeStore() repository.VerificationCodeRepository {
	return &memoryCodeStore{
		byCode: make(map[string]codeRecord),
		byUser: make(map[string]string),
	}
}

func (s *memoryCodeStore) Put(_ context.Context, userID, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.byCode[code]; ok {
		if time.Now().Before(rec.expiresAt) {
			return repository.ErrCodeTaken
		}
		// Reclaiming an expired code: drop the old owner's reverse entry so
		// it cannot point at the new owner's live code.
		if s.byUser[rec.userID] == code {
			delete(s.byUser, rec.userID)
		}
	}

	s.byCode[code] = codeRecord{userID: userID, expiresAt: time.Now().Add(ttl)}
	s.byUser[userID] = code

	return nil
}

func (s *memoryCodeStore) PopByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.byUser[userID]
	if !ok {
		return nil
	}

	delete(s.byUser, userID)
	// Remove the forward key only while it still belongs to this user.
	if rec, ok := s.byCode[code]; ok && rec.userID == userID {
		delete(s.byCode, code)
	}

	return nil
}

func (s *memoryCodeStore) Consume(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byCode[code]
	if !ok || time.Now().After(rec.expiresAt) {
		delete(s.byCode, code)
		// Clear the reverse entry only while it still cross-references this
		// code; a reclaimed value may already belong to someone else.
		if ok && s.byUser[rec.userID] == code {
			delete(s.byUser, rec.userID)
		}

		return "", repository.ErrCodeNotFound
	}

	delete(s.byCode, code)
	if s.byUser[rec.userID] == code {
		delete(s.byUser, rec.userID)
	}

	return rec.userID, nil
}
