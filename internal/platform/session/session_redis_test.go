package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

// createTestSession creates a session entity for testing.
func createTestSession(id, userID string, createdAt time.Time, expiresIn time.Duration) *entity.Session {
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(expiresIn),
	}
}

func TestNewSessionRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.client, "client is nil")
	assert.Equal(t, "session", repo.prefix)
}

func TestSessionRedis_Create(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name    string
		session *entity.Session
		wantErr bool
	}{
		{
			name:    "success: create session",
			session: createTestSession("session-001", "user-1", now, 7*24*time.Hour),
			wantErr: false,
		},
		{
			name:    "failure: expired session",
			session: createTestSession("expired-session", "user-1", now.Add(-2*time.Hour), time.Hour),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mr := setupTestRedis(t)
			repo := NewSessionRedis(client, "session")

			err := repo.Create(context.Background(), tt.session)

			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, mr.Exists(repo.sessionKey(tt.session.ID)))
				return
			}
			require.NoError(t, err)

			assert.True(t, mr.Exists(repo.sessionKey(tt.session.ID)))
			assert.Greater(t, mr.TTL(repo.sessionKey(tt.session.ID)), time.Duration(0))

			members, err := mr.ZMembers(repo.userSessionsKey(tt.session.UserID))
			require.NoError(t, err)
			assert.Equal(t, []string{tt.session.ID}, members)
		})
	}
}

func TestSessionRedis_Exists(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, createTestSession("jti-1", "user-1", time.Now(), time.Hour)))

	ok, err := repo.Exists(ctx, "user-1", "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// 他のユーザーのセッションIDは一致しない
	ok, err = repo.Exists(ctx, "user-2", "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "user-1", "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Hour + time.Second)

	ok, err = repo.Exists(ctx, "user-1", "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "expired session must not be active")
}

func TestSessionRedis_Create_UserSetExpiry(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()
	now := time.Now()
	setKey := repo.userSessionsKey("user-1")

	require.NoError(t, repo.Create(ctx, createTestSession("short", "user-1", now, time.Minute)))
	require.NoError(t, repo.Create(ctx, createTestSession("long", "user-1", now, 2*time.Hour)))

	// 集合は最も長いセッションに合わせて失効する
	ttl := mr.TTL(setKey)
	assert.Greater(t, ttl, time.Hour)
	assert.LessOrEqual(t, ttl, 2*time.Hour)

	score, err := mr.ZScore(setKey, "long")
	require.NoError(t, err)
	assert.Equal(t, float64(now.Add(2*time.Hour).UnixMilli()), score)

	mr.FastForward(2*time.Hour + time.Second)

	assert.Zero(t, client.ZCard(ctx, setKey).Val())
	assert.False(t, mr.Exists(setKey))
}

func TestSessionRedis_Create_PrunesExpiredIDs(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()
	now := time.Now()
	setKey := repo.userSessionsKey("user-1")

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, createTestSession(id, "user-1", now, time.Minute)))
	}

	mr.FastForward(2 * time.Minute)
	repo.now = func() time.Time { return now.Add(2 * time.Minute) }

	require.NoError(t, repo.Create(ctx, createTestSession("d", "user-1", now.Add(2*time.Minute), time.Hour)))

	members, err := mr.ZMembers(setKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, members)
}

func TestSessionRedis_Revoke(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		userID      string
		sessionID   string
		expectedErr error
	}{
		{name: "success: revoke own session", userID: "user-1", sessionID: "jti-1"},
		{name: "failure: session of another user", userID: "user-2", sessionID: "jti-1", expectedErr: usecase.ErrSessionNotFound},
		{name: "failure: session not found", userID: "user-1", sessionID: "nonexistent-id", expectedErr: usecase.ErrSessionNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mr := setupTestRedis(t)
			repo := NewSessionRedis(client, "session")
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, createTestSession("jti-1", "user-1", time.Now(), time.Hour)))
			require.NoError(t, repo.Create(ctx, createTestSession("jti-2", "user-1", time.Now(), time.Hour)))

			err := repo.Revoke(ctx, tt.userID, tt.sessionID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.True(t, mr.Exists(repo.sessionKey("jti-1")))
				return
			}
			require.NoError(t, err)
			assert.False(t, mr.Exists(repo.sessionKey("jti-1")))

			ok, err := repo.Exists(ctx, "user-1", "jti-2")
			require.NoError(t, err)
			assert.True(t, ok, "other sessions must stay active")
		})
	}
}

func TestSessionRedis_RevokeAllByUserID(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, createTestSession("jti-1", "user-1", time.Now(), time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("jti-2", "user-1", time.Now(), time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("jti-3", "user-2", time.Now(), time.Hour)))

	require.NoError(t, repo.RevokeAllByUserID(ctx, "user-1"))

	for _, id := range []string{"jti-1", "jti-2"} {
		ok, err := repo.Exists(ctx, "user-1", id)
		require.NoError(t, err)
		assert.False(t, ok, id)
		assert.False(t, mr.Exists(repo.sessionKey(id)))
	}
	assert.False(t, mr.Exists(repo.userSessionsKey("user-1")))

	ok, err := repo.Exists(ctx, "user-2", "jti-3")
	require.NoError(t, err)
	assert.True(t, ok)

	// セッションがないユーザーでもエラーにならない
	assert.NoError(t, repo.RevokeAllByUserID(ctx, "nobody"))
}

func TestSessionRedis_DeleteExpired(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, createTestSession("u1-short", "user-1", now, time.Minute)))
	require.NoError(t, repo.Create(ctx, createTestSession("u1-long", "user-1", now, time.Hour)))
	require.NoError(t, repo.Create(ctx, createTestSession("u2-short", "user-2", now, time.Minute)))
	require.NoError(t, repo.Create(ctx, createTestSession("u2-long", "user-2", now, time.Hour)))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "nothing has expired yet")

	mr.FastForward(2 * time.Minute)
	repo.now = func() time.Time { return now.Add(2 * time.Minute) }

	n, err = repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for user, want := range map[string]string{"user-1": "u1-long", "user-2": "u2-long"} {
		members, err := mr.ZMembers(repo.userSessionsKey(user))
		require.NoError(t, err)
		assert.Equal(t, []string{want}, members, user)
	}
}
