package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ComputeFunc produces the value to cache when the key is absent.
type ComputeFunc func(ctx context.Context) (string, error)

// URLCache is a keyed TTL cache with get-or-compute semantics, backed
// by Redis. It fronts the signed-URL generation for listing images so
// repeated feed renders do not re-sign the same objects.
type URLCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewURLCache builds a URLCache. The TTL should be shorter than the
// signature validity so a cached URL is never served after it expires.
func NewURLCache(rdb *redis.Client, ttl time.Duration) *URLCache {
	return &URLCache{rdb: rdb, ttl: ttl}
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss. A Redis failure falls through to compute: the cache is
// an optimization, never a dependency.
func (c *URLCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (string, error) {
	cacheKey := "signedurl:" + key

	val, err := c.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		return val, nil
	}
	if err != redis.Nil {
		log.Printf("WARN: url cache read failed for %s: %v", key, err)
	}

	val, err = compute(ctx)
	if err != nil {
		return "", fmt.Errorf("computing value for %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, cacheKey, val, c.ttl).Err(); err != nil {
		log.Printf("WARN: url cache write failed for %s: %v", key, err)
	}
	return val, nil
}

// Invalidate drops the cached value for key, if any.
func (c *URLCache) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, "signedurl:"+key).Err(); err != nil {
		log.Printf("WARN: url cache invalidate failed for %s: %v", key, err)
	}
}
