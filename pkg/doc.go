// Package pkg provides the core libraries for artistgraph.
//
// # Overview
//
// Artistgraph builds weighted similarity graphs around a seed artist. Starting
// from the seed it walks the "similar artists" relation of a metadata source
// breadth-first, resolving each artist once and recording an edge per
// similarity, until a hop depth is reached. The pkg directory is organized
// into these areas:
//
//  1. [similarity] - Graph construction (traversal, request cache, batching, fallback)
//  2. [store] - Persistent graph store contract, in-memory and MongoDB implementations
//  3. [integrations] - Metadata API clients (Last.fm, Deezer)
//  4. [cache] - Response caches below the API clients (file, Redis)
//  5. [graph] - Post-processing and JSON I/O for built graphs
//  6. [config], [errors], [observability] - Ambient infrastructure
//
// # Architecture
//
// The typical data flow through artistgraph:
//
//	seed artist
//	     ↓
//	[similarity] Builder (full mode with store, degraded without)
//	     ↓                      ↘
//	[store] artists + edges     [integrations/lastfm] → [cache]
//	     ↓
//	artist.GraphData
//	     ↓
//	[graph] threshold filter / index resolution → JSON
//
// # Quick Start
//
//	src, _ := lastfm.NewClient(apiKey, cache.NewNullCache(), 0, lastfm.Options{})
//	b := similarity.NewBuilder(src, store.NewMemory(), similarity.Options{})
//	g, err := b.Build(ctx, "Radiohead", 2)
//	if err != nil {
//	    return err
//	}
//	view := graph.Process(*g, 0.3)
//
// [similarity]: github.com/matzehuels/artistgraph/pkg/similarity
// [store]: github.com/matzehuels/artistgraph/pkg/store
// [integrations]: github.com/matzehuels/artistgraph/pkg/integrations
// [cache]: github.com/matzehuels/artistgraph/pkg/cache
// [graph]: github.com/matzehuels/artistgraph/pkg/graph
// [config]: github.com/matzehuels/artistgraph/pkg/config
// [errors]: github.com/matzehuels/artistgraph/pkg/errors
// [observability]: github.com/matzehuels/artistgraph/pkg/observability
package pkg
