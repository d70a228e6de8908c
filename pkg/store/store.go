// Package store defines the persistent artist graph store.
//
// The store keeps artists keyed by case-insensitive name and the weighted
// similarity edges discovered between them, so that later graph builds can
// reuse earlier lookups instead of calling the metadata source again.
//
// A graph build does not open the store directly. It asks a [Provider] for a
// handle with [Provider.Acquire]; failure there selects the degraded,
// API-only build. Any error returned by a [Store] method is wrapped with
// errors.ErrCodeStore so that the builder can tell store failures apart from
// metadata lookups that merely failed for one artist.
//
// Implementations:
//   - [Memory]: process-local store for tests and short-lived CLI runs
//   - mongo.Provider (pkg/store/mongo): MongoDB-backed store
//
// Concurrent builds may upsert the same artists and edges at the same time.
// Implementations must make upserts idempotent on their keys instead of
// relying on callers to coordinate.
package store

import (
	"context"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

// Store is a handle to the persistent artist graph.
type Store interface {
	// GetArtist returns the stored artist with the given case-insensitive
	// name, or nil if there is none.
	GetArtist(ctx context.Context, name string) (*artist.Artist, error)

	// UpsertArtist inserts or replaces the artist keyed by its name and
	// returns the stored record with its ID assigned. Stored artists keep
	// their ID across replacements.
	UpsertArtist(ctx context.Context, a artist.Artist) (*artist.Artist, error)

	// GetCachedEdges returns the edges previously computed for the artist
	// with the given ID, ordered by descending score. An artist whose
	// neighbours were never computed has no edges.
	GetCachedEdges(ctx context.Context, artistID string) ([]CachedEdge, error)

	// UpsertEdges writes a batch of edges, idempotent on (SourceID, TargetID).
	UpsertEdges(ctx context.Context, edges []EdgeRecord) error
}

// Provider hands out store handles.
type Provider interface {
	// Acquire returns a usable store handle or an error if the store is
	// currently unreachable.
	Acquire(ctx context.Context) (Store, error)
}

// ProviderFunc adapts a function to the [Provider] interface.
type ProviderFunc func(ctx context.Context) (Store, error)

// Acquire calls f(ctx).
func (f ProviderFunc) Acquire(ctx context.Context) (Store, error) { return f(ctx) }

// EdgeRecord is a similarity edge as persisted. Depth is the BFS depth of
// the target when the edge was discovered.
type EdgeRecord struct {
	SourceID string  `json:"source_id" bson:"source_id"`
	TargetID string  `json:"target_id" bson:"target_id"`
	Score    float64 `json:"score" bson:"score"`
	Depth    int     `json:"depth" bson:"depth"`
}

// CachedEdge is a stored edge joined with its target artist.
type CachedEdge struct {
	Target artist.Artist `json:"target"`
	Score  float64       `json:"score"`
}
