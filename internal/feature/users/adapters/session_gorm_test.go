package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

func createTestSession(id, userID string, createdAt time.Time, ttl time.Duration) *entity.Session {
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(ttl),
	}
}

func TestSessionGorm_CreateAndExists(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionGorm(setupTestDB(t))
	now := time.Now()

	require.NoError(t, repo.Create(ctx, createTestSession("s-1", "u-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("s-old", "u-1", now.Add(-2*time.Hour), time.Hour)))

	tests := []struct {
		name   string
		userID string
		id     string
		want   bool
	}{
		{"active", "u-1", "s-1", true},
		{"expired", "u-1", "s-old", false},
		{"wrong user", "u-2", "s-1", false},
		{"unknown id", "u-1", "nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.Exists(ctx, tt.userID, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSessionGorm_Revoke(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionGorm(setupTestDB(t))
	now := time.Now()
	require.NoError(t, repo.Create(ctx, createTestSession("a", "u-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("b", "u-1", now, time.Hour)))

	t.Run("other user cannot revoke", func(t *testing.T) {
		assert.ErrorIs(t, repo.Revoke(ctx, "u-2", "a"), usecase.ErrSessionNotFound)
	})

	t.Run("revokes only the presented session", func(t *testing.T) {
		require.NoError(t, repo.Revoke(ctx, "u-1", "a"))

		ok, err := repo.Exists(ctx, "u-1", "a")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = repo.Exists(ctx, "u-1", "b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("revoking twice", func(t *testing.T) {
		assert.ErrorIs(t, repo.Revoke(ctx, "u-1", "a"), usecase.ErrSessionNotFound)
	})
}

func TestSessionGorm_RevokeAllByUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionGorm(setupTestDB(t))
	now := time.Now()
	require.NoError(t, repo.Create(ctx, createTestSession("a", "u-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("b", "u-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("c", "u-2", now, time.Hour)))

	require.NoError(t, repo.RevokeAllByUserID(ctx, "u-1"))

	for _, id := range []string{"a", "b"} {
		ok, err := repo.Exists(ctx, "u-1", id)
		require.NoError(t, err)
		assert.False(t, ok, id)
	}
	ok, err := repo.Exists(ctx, "u-2", "c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionGorm_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionGorm(setupTestDB(t))
	now := time.Now()
	require.NoError(t, repo.Create(ctx, createTestSession("live", "u-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("dead-1", "u-1", now.Add(-2*time.Hour), time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("dead-2", "u-2", now.Add(-2*time.Hour), time.Hour)))

	n, err := repo.DeleteExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	ok, err := repo.Exists(ctx, "u-1", "live")
	require.NoError(t, err)
	assert.True(t, ok)
}
