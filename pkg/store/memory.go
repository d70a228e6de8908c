package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
)

// Memory is an in-process [Store] and [Provider].
//
// The zero value is not usable; create one with [NewMemory].
// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	byName  map[string]artist.Artist // keyed by artist.Key
	byID    map[string]string        // id -> name key
	edges   map[string]map[string]EdgeRecord
	offline bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byName: make(map[string]artist.Artist),
		byID:   make(map[string]string),
		edges:  make(map[string]map[string]EdgeRecord),
	}
}

// Acquire returns m itself, or a STORE_ERROR while m is offline.
func (m *Memory) Acquire(ctx context.Context) (Store, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetOffline makes every subsequent call fail with a STORE_ERROR until it is
// called again with false. It simulates a store outage.
func (m *Memory) SetOffline(offline bool) {
	m.mu.Lock()
	m.offline = offline
	m.mu.Unlock()
}

func (m *Memory) check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.offline {
		return errors.New(errors.ErrCodeStore, "memory store is offline")
	}
	return nil
}

// GetArtist looks up an artist by case-insensitive name. It returns nil, nil
// when the artist is unknown.
func (m *Memory) GetArtist(ctx context.Context, name string) (*artist.Artist, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byName[artist.Key(name)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// UpsertArtist stores a, keeping the ID of an existing entry with the same key.
func (m *Memory) UpsertArtist(ctx context.Context, a artist.Artist) (*artist.Artist, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	key := a.Key()
	if artist.Blank(a.Name) {
		return nil, errors.New(errors.ErrCodeStore, "artist name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.byName[key]; ok {
		a.ID = prev.ID
	} else {
		a.ID = uuid.NewString()
	}
	a.Tags = slices.Clone(a.Tags)
	m.byName[key] = a
	m.byID[a.ID] = key
	return &a, nil
}

// GetCachedEdges returns the stored edges of artistID, highest score first.
func (m *Memory) GetCachedEdges(ctx context.Context, artistID string) ([]CachedEdge, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []CachedEdge
	for targetID, rec := range m.edges[artistID] {
		key, ok := m.byID[targetID]
		if !ok {
			continue
		}
		out = append(out, CachedEdge{Target: m.byName[key], Score: rec.Score})
	}
	slices.SortFunc(out, func(a, b CachedEdge) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Target.Key(), b.Target.Key())
	})
	return out, nil
}

// UpsertEdges inserts or replaces edges keyed by source and target.
func (m *Memory) UpsertEdges(ctx context.Context, edges []EdgeRecord) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range edges {
		out, ok := m.edges[e.SourceID]
		if !ok {
			out = make(map[string]EdgeRecord)
			m.edges[e.SourceID] = out
		}
		out[e.TargetID] = e
	}
	return nil
}

// Len returns the number of stored artists and edges.
func (m *Memory) Len() (artists, edges int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, out := range m.edges {
		edges += len(out)
	}
	return len(m.byName), edges
}

var (
	_ Store    = (*Memory)(nil)
	_ Provider = (*Memory)(nil)
)
