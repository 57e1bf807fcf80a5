package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "afiliado:query:"

type redisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisQueryCache returns a QueryCache backed by Redis for multi-process
// deployments. Redis failures degrade to cache misses.
func NewRedisQueryCache(client *redis.Client, ttl time.Duration, log *zap.Logger) QueryCache {
	return &redisQueryCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("cache.redis"),
	}
}

func (c *redisQueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("redis get failed", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}
	return payload, true
}

func (c *redisQueryCache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.log.Debug("redis set failed", zap.Error(err), zap.String("key", key))
	}
}
