// Package cache stores rendered artifacts.
//
// A [Cache] maps keys to byte slices with an optional TTL. Backends:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared between server replicas
//
// [Fetch] wraps a cache lookup around a render function and reports hits,
// misses and stores to the observability hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/listgraph/pkg/observability"
)

// Cache is a byte cache with per-entry TTL. A zero TTL never expires.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Fetch returns the value cached under key, or calls fn and caches its
// result for ttl. keyType labels the lookup in the observability hooks.
// Errors from the cache itself are treated as misses and do not fail the
// call; a failing store is ignored.
func Fetch(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
