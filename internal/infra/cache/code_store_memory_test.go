package cache

import (
	"context"
	"testing"
	"time"

	"ziplink/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCodeStore_PutAndConsume(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "123456", time.Minute))

	userID, err := store.Consume(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "42", userID)

	// Consume is delete-on-read: the code is single-use.
	_, err = store.Consume(ctx, "123456")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestMemoryCodeStore_PutConflict(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "777", time.Minute))

	err := store.Put(ctx, "43", "777", time.Minute)
	assert.ErrorIs(t, err, repository.ErrCodeTaken)
}

func TestMemoryCodeStore_PopByUserID(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "123456", time.Minute))
	require.NoError(t, store.PopByUserID(ctx, "42"))

	_, err := store.Consume(ctx, "123456")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)

	// Popping a user without a live code is a no-op.
	assert.NoError(t, store.PopByUserID(ctx, "42"))
}

func TestMemoryCodeStore_ExpiredCodeIsNotFound(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "123456", -time.Second))

	_, err := store.Consume(ctx, "123456")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestMemoryCodeStore_ExpiredCodeCanBeReclaimed(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "777", -time.Second))

	// A dead code's value is free for another user.
	require.NoError(t, store.Put(ctx, "43", "777", time.Minute))

	userID, err := store.Consume(ctx, "777")
	require.NoError(t, err)
	assert.Equal(t, "43", userID)
}

func TestMemoryCodeStore_ReclaimedCodeSurvivesOldOwnerPop(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "777", -time.Second))
	require.NoError(t, store.Put(ctx, "43", "777", time.Minute))

	// The old owner's pop must not follow a stale reverse entry into the
	// new owner's live pair.
	require.NoError(t, store.PopByUserID(ctx, "42"))

	userID, err := store.Consume(ctx, "777")
	require.NoError(t, err)
	assert.Equal(t, "43", userID)
}

func TestMemoryCodeStore_ExpiredConsumeKeepsReclaimedReverseEntry(t *testing.T) {
	store := NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "42", "111", -time.Second))

	// The dead forward entry still names user 42; the failed consume must
	// not clear 42's reverse entry once it points at a fresh code.
	require.NoError(t, store.Put(ctx, "42", "222", time.Minute))

	_, err := store.Consume(ctx, "111")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)

	require.NoError(t, store.PopByUserID(ctx, "42"))
	_, err = store.Consume(ctx, "222")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}
