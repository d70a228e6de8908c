package cache

import (
	"context"
	"time"
)

// Prefixed scopes a Cache to a key namespace. Close is a no-op so that the
// shared backend is only closed by its owner.
type Prefixed struct {
	inner  Cache
	prefix string
}

// NewPrefixed wraps inner so every key is prefixed with prefix.
// A nil inner is replaced by [NullCache].
func NewPrefixed(inner Cache, prefix string) *Prefixed {
	if inner == nil {
		inner = NullCache{}
	}
	if p, ok := inner.(*Prefixed); ok {
		return &Prefixed{inner: p.inner, prefix: p.prefix + prefix}
	}
	return &Prefixed{inner: inner, prefix: prefix}
}

// Prefix returns the full key prefix.
func (p *Prefixed) Prefix() string { return p.prefix }

// Get retrieves a value from the inner cache under the prefixed key.
func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

// Set stores a value in the inner cache under the prefixed key.
func (p *Prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

// Delete removes the prefixed key from the inner cache.
func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

// Close does nothing; the inner cache belongs to its creator.
func (p *Prefixed) Close() error { return nil }

var _ Cache = (*Prefixed)(nil)
