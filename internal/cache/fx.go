package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/config"
)

// NewQueryCache selects a query cache backend based on configuration.
func NewQueryCache(cfg config.Config, log *zap.Logger) QueryCache {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisQueryCache(client, cfg.CacheTTL, log)
	case config.CacheBackendNone:
		return NewNoopQueryCache()
	default:
		return NewMemoryQueryCache(cfg.CacheTTL)
	}
}

var Module = fx.Module("cache",
	fx.Provide(NewQueryCache),
)
