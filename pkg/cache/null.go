package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// NullCache stores nothing. It backs --no-cache and runners built without a
// cache, and counts the scene and artifact writes it drops so callers can
// report what a cache would have held.
type NullCache struct {
	writes atomic.Int64
	bytes  atomic.Int64
}

// NewNullCache returns an empty NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get misses, or returns the context error once ctx is done.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

// Set drops data and records its size.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.writes.Add(1)
	c.bytes.Add(int64(len(data)))
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return ctx.Err() }

func (c *NullCache) Close() error { return nil }

// Dropped reports how many writes were discarded and their total size.
func (c *NullCache) Dropped() (writes, bytes int64) {
	return c.writes.Load(), c.bytes.Load()
}

var _ Cache = (*NullCache)(nil)
