// GlowDesk | 2026
// cache.go

package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort key-value cache. Implementations never return
// errors: a failed read is a miss and a failed write is dropped, so an
// unreachable cache can never block or fail an auth operation. The
// implementation is chosen once at process start.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// NewCache returns a redis-backed cache, or the no-op cache when no client
// is configured.
func NewCache(client *redis.Client) Cache {
	if client == nil {
		return NoopCache{}
	}
	return &redisCache{client: client}
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
	}
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("cache delete failed", "key", key, "error", err)
	}
}

// NoopCache satisfies Cache when no cache backend is configured. Every read
// is a miss and every write is dropped.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return nil, false
}

func (NoopCache) Set(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) {
}

func (NoopCache) Delete(ctx context.Context, key string) {}
