package di

import (
	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/session"
)

// sessionKeyPrefix はRedis上のセッションキーの接頭辞です。
const sessionKeyPrefix = "session"

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the session store of the primary database.
func NewSessionRepository(rdb *redis.Client, fallback usecase.SessionRepository) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, sessionKeyPrefix)
	}
	return fallback
}
