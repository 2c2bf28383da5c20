package tenancy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, for deployments running more than
// one backend instance. Unlike the in-process store it takes a TTL: a shared
// cache outlives deployments, so entries age out instead of living forever.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

const redisKeyPrefix = "tenancy:org:"

// NewRedisCache creates a Redis-backed descriptor cache. A zero ttl stores
// entries without expiration, matching the write-once mapping assumption.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get retrieves a descriptor. Redis failures degrade to a cache miss so that
// resolution falls through to the directory instead of failing the request.
func (c *RedisCache) Get(ctx context.Context, orgID string) (*Descriptor, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+orgID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "tenant cache read failed", "org_id", orgID, "error", err)
		}
		return nil, false
	}

	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry corrupt", "org_id", orgID, "error", err)
		_ = c.client.Del(ctx, redisKeyPrefix+orgID).Err()
		return nil, false
	}
	return &d, true
}

func (c *RedisCache) Set(ctx context.Context, orgID string, d *Descriptor) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+orgID, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache write failed", "org_id", orgID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, orgID string) {
	if err := c.client.Del(ctx, redisKeyPrefix+orgID).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache invalidation failed", "org_id", orgID, "error", err)
	}
}
