package cache

import (
	"context"
	"time"
)

// QueryCache memoizes serialized aggregation results under a caller-built
// key (influencer, window, query kind). Implementations tolerate concurrent
// readers and writers; a miss is always safe.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
}

type memoryQueryCache struct {
	store Cache[string, []byte]
	ttl   time.Duration
}

// NewMemoryQueryCache returns a process-local QueryCache with a fixed TTL.
func NewMemoryQueryCache(ttl time.Duration) QueryCache {
	return &memoryQueryCache{
		store: NewTTLCache[string, []byte](),
		ttl:   ttl,
	}
}

func (c *memoryQueryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.store.Get(key)
}

func (c *memoryQueryCache) Set(_ context.Context, key string, payload []byte) {
	c.store.Set(key, payload, c.ttl)
}

type noopQueryCache struct{}

// NewNoopQueryCache returns a QueryCache that never hits. Used in tests and
// when caching is disabled.
func NewNoopQueryCache() QueryCache {
	return noopQueryCache{}
}

func (noopQueryCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (noopQueryCache) Set(context.Context, string, []byte) {}
