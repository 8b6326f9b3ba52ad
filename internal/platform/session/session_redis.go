// Package session はRedisを使ったアクティブセッションの保存を提供します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// record はRedisに保存するセッションの値です。
type record struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionRedis implements usecase.SessionRepository using Redis.
// Each session is a key that expires with its token, and each user has a sorted set
// of session IDs scored by expiry (unix millis). The set itself expires with its
// longest-lived member.
type SessionRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// sessionKey returns the Redis key for a session.
func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// userSessionsKey returns the Redis key for a user's session set.
func (r *SessionRedis) userSessionsKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, userID)
}

// Create persists a new session to Redis.
func (r *SessionRedis) Create(ctx context.Context, s *entity.Session) error {
	data, err := json.Marshal(record{UserID: s.UserID, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	setKey := r.userSessionsKey(s.UserID)
	var latest *redis.ZSliceCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(s.ID), data, ttl)
		pipe.ZAdd(ctx, setKey, redis.Z{
			Score:  float64(s.ExpiresAt.UnixMilli()),
			Member: s.ID,
		})
		pipe.ZRemRangeByScore(ctx, setKey, "-inf", r.expiredBound())
		latest = pipe.ZRevRangeWithScores(ctx, setKey, 0, 0)
		return nil
	})
	if err != nil {
		return err
	}

	top := latest.Val()
	if len(top) == 0 {
		return nil
	}
	return r.client.ExpireAt(ctx, setKey, time.UnixMilli(int64(top[0].Score))).Err()
}

// expiredBound は期限切れとみなすスコアの上限(現在時刻のミリ秒)を返します。
func (r *SessionRedis) expiredBound() string {
	return strconv.FormatInt(r.now().UnixMilli(), 10)
}

// find returns the session stored under id, or ErrSessionNotFound when the key is gone,
// belongs to another user or has expired.
func (r *SessionRedis) find(ctx context.Context, userID, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return r.decode(userID, id, data)
}

func (r *SessionRedis) decode(userID, id string, data []byte) (*entity.Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if rec.UserID != userID || !rec.ExpiresAt.After(r.now()) {
		return nil, usecase.ErrSessionNotFound
	}
	return &entity.Session{ID: id, UserID: rec.UserID, CreatedAt: rec.CreatedAt, ExpiresAt: rec.ExpiresAt}, nil
}

// Exists reports whether the session is active.
func (r *SessionRedis) Exists(ctx context.Context, userID, id string) (bool, error) {
	_, err := r.find(ctx, userID, id)
	if errors.Is(err, usecase.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke deletes exactly one session of the user.
func (r *SessionRedis) Revoke(ctx context.Context, userID, id string) error {
	if _, err := r.find(ctx, userID, id); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(id))
		pipe.ZRem(ctx, r.userSessionsKey(userID), id)
		return nil
	})
	return err
}

// RevokeAllByUserID deletes every session of the user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID string) error {
	setKey := r.userSessionsKey(userID)
	ids, err := r.client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id))
	}
	keys = append(keys, setKey)
	return r.client.Del(ctx, keys...).Err()
}

// DeleteExpired prunes expired IDs from every user's session set.
// Session keys themselves are dropped by their Redis TTL.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	bound := r.expiredBound()
	var removed int64
	iter := r.client.Scan(ctx, 0, r.userSessionsKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.ZRemRangeByScore(ctx, iter.Val(), "-inf", bound).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
