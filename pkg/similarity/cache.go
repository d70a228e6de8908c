package similarity

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/observability"
)

// RequestCache maps artist names to resolution outcomes for the duration of
// one graph build.
//
// Names are compared case-insensitively. Concurrent resolutions of the same
// name share a single lookup. RequestCache is safe for concurrent use.
type RequestCache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
}

type entry struct {
	artist *artist.Artist // nil when the lookup found nothing or failed
	err    error
}

// NewRequestCache creates an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{entries: make(map[string]entry)}
}

// Get returns the artist resolved for name, if any.
func (c *RequestCache) Get(name string) (artist.Artist, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[artist.Key(name)]
	if !ok || e.artist == nil {
		return artist.Artist{}, false
	}
	return *e.artist, true
}

// Put records a as resolved under its own name.
func (c *RequestCache) Put(a artist.Artist) {
	c.mu.Lock()
	c.entries[a.Key()] = entry{artist: &a}
	c.mu.Unlock()
}

// Len returns the number of names with a recorded outcome.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Resolve returns the recorded outcome for name or calls load to produce it.
//
// The outcome of load is recorded under name and, when load returns an
// artist whose name differs (the source corrected the spelling), under the
// artist's name too. Not-found results and lookup errors are recorded as
// well so that a failing name is not retried within the build; context
// errors are not recorded.
func (c *RequestCache) Resolve(ctx context.Context, name string, load func() (*artist.Artist, error)) (*artist.Artist, error) {
	key := artist.Key(name)
	if e, ok := c.lookup(key); ok {
		observability.Cache().OnCacheHit(ctx, observability.TierRequest)
		return e.artist, e.err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e.artist, e.err
		}
		observability.Cache().OnCacheMiss(ctx, observability.TierRequest)

		a, err := load()
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nil, err
		}
		c.record(key, a, err)
		return a, err
	})
	a, _ := v.(*artist.Artist)
	if a == nil {
		return nil, err
	}
	cp := *a
	return &cp, err
}

func (c *RequestCache) lookup(key string) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && e.artist != nil {
		cp := *e.artist
		e.artist = &cp
	}
	return e, ok
}

func (c *RequestCache) record(key string, a *artist.Artist, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a == nil {
		c.entries[key] = entry{err: err}
		return
	}
	cp := *a
	c.entries[key] = entry{artist: &cp}
	if k := cp.Key(); k != key {
		c.entries[k] = entry{artist: &cp}
	}
	observability.Cache().OnCacheSet(context.Background(), observability.TierRequest, 1)
}
