// Package cache provides byte-level caches for metadata source responses.
//
// This is the lowest caching tier of artistgraph: it sits below the metadata
// clients and stores raw decoded API responses keyed by method and artist.
// The request-scoped and persistent tiers of a graph build live in
// pkg/similarity and pkg/store.
//
// Implementations:
//   - [NullCache]: never stores anything (caching disabled, tests)
//   - [FileCache]: one file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for multi-instance server deployments
//
// [Prefixed] scopes any Cache to a key namespace so that several clients can
// share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with an optional time-to-live.
//
// Get returns hit=false with a nil error on a miss or an expired entry.
// A ttl of zero passed to Set means the entry never expires.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
