// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/users/usecase"
)

// CachingAvatarRepository decorates an AvatarRepository with a Redis read-through cache.
// Writes go to the inner repository first and then invalidate the cached image.
type CachingAvatarRepository struct {
	inner     usecase.AvatarRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.AvatarRepository = (*CachingAvatarRepository)(nil)

// NewCachingAvatarRepository decorates an AvatarRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "avatars".
func NewCachingAvatarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AvatarRepository, namespace string) *CachingAvatarRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "avatars"
	}
	return &CachingAvatarRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// SaveAvatar stores the image and drops the cached copy.
func (c *CachingAvatarRepository) SaveAvatar(ctx context.Context, userID string, data []byte) error {
	if err := c.inner.SaveAvatar(ctx, userID, data); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// DeleteAvatar clears the image and drops the cached copy.
func (c *CachingAvatarRepository) DeleteAvatar(ctx context.Context, userID string) error {
	if err := c.inner.DeleteAvatar(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// FindAvatar returns the image, checking the cache first then falling back to the store.
// Missing avatars are not cached.
func (c *CachingAvatarRepository) FindAvatar(ctx context.Context, userID string) ([]byte, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindAvatar(ctx, userID)
	}

	key := c.cacheKey(userID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		return b, nil
	}

	// 2) Fallback to the store
	data, err := c.inner.FindAvatar(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
	return data, nil
}

// invalidate deletes the cached image. Failures are ignored; the entry expires with its TTL.
func (c *CachingAvatarRepository) invalidate(ctx context.Context, userID string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.cacheKey(userID)).Err()
}

// cacheKey generates the cache key for a user's avatar.
func (c *CachingAvatarRepository) cacheKey(userID string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(userID))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
