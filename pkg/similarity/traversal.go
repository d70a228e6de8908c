package similarity

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/observability"
	"github.com/matzehuels/artistgraph/pkg/store"
)

// frontierItem is a pending unit of BFS work. depth is fixed at enqueue time.
type frontierItem struct {
	name  string
	depth int
}

// traversal is the state of one BFS run in one mode.
//
// Only the run loop touches queue, visited and data. Candidate resolutions
// started by the limiter go through the request cache, the store and the
// source, all of which are safe for concurrent use.
type traversal struct {
	source       MetadataSource
	store        store.Store // nil in degraded mode
	cache        *RequestCache
	logger       *log.Logger
	mode         string
	maxDepth     int
	concurrency  int
	similarLimit int // 0 keeps every candidate

	queue   []frontierItem
	visited map[string]bool // lowercased names dequeued or added as nodes
	added   map[string]bool // lowercased names of appended nodes
	data    artist.GraphData
	seedErr error
}

func newTraversal(source MetadataSource, s store.Store, logger *log.Logger, maxDepth, concurrency, similarLimit int) *traversal {
	return &traversal{
		source:       source,
		store:        s,
		cache:        NewRequestCache(),
		logger:       logger,
		maxDepth:     maxDepth,
		concurrency:  concurrency,
		similarLimit: similarLimit,
		visited:      make(map[string]bool),
		added:        make(map[string]bool),
		data:         artist.GraphData{Nodes: []artist.Artist{}, Edges: []artist.Edge{}},
	}
}

// run performs the traversal from seed and returns the assembled graph.
//
// The returned error is either an abort (store failure, fatal source error,
// context done) or ARTIST_NOT_FOUND when the seed could not be resolved.
func (t *traversal) run(ctx context.Context, seed string) (*artist.GraphData, error) {
	t.queue = append(t.queue, frontierItem{name: seed})
	report := progressFromContext(ctx)

	for len(t.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := t.queue[0]
		t.queue = t.queue[1:]

		key := artist.Key(item.name)
		if t.visited[key] {
			continue
		}
		t.visited[key] = true

		a, err := t.resolve(ctx, item.name)
		if err != nil {
			if aborts(err) {
				return nil, err
			}
			t.logger.Debug("artist lookup failed", "artist", item.name, "err", err)
			if item.depth == 0 {
				t.seedErr = err
			}
			continue
		}
		if a == nil {
			t.logger.Debug("artist not found", "artist", item.name)
			continue
		}

		// A corrected spelling can lead to an artist that is already a node.
		if t.added[a.Key()] {
			continue
		}
		t.added[a.Key()] = true
		t.visited[a.Key()] = true

		t.data.Nodes = append(t.data.Nodes, *a)
		if item.depth == 0 {
			center := *a
			t.data.Center = &center
		}

		if item.depth < t.maxDepth {
			if err := t.expand(ctx, *a, item.depth); err != nil {
				return nil, err
			}
		}
		report(Progress{Mode: t.mode, Nodes: len(t.data.Nodes), Edges: len(t.data.Edges), Depth: item.depth})
	}

	if t.data.Center == nil {
		if t.seedErr != nil {
			return nil, errors.Wrap(errors.ErrCodeArtistNotFound, t.seedErr, "artist %q could not be resolved", seed)
		}
		return nil, errors.New(errors.ErrCodeArtistNotFound, "artist %q not found", seed)
	}
	return &t.data, nil
}

// resolve looks name up in the request cache, then the store, then the
// source. Artists fetched from the source are written through to the store.
func (t *traversal) resolve(ctx context.Context, name string) (*artist.Artist, error) {
	return t.cache.Resolve(ctx, name, func() (*artist.Artist, error) {
		if t.store != nil {
			a, err := t.store.GetArtist(ctx, name)
			if err != nil {
				return nil, storeError(err, "get artist %s", name)
			}
			if a != nil {
				observability.Cache().OnCacheHit(ctx, observability.TierStore)
				return a, nil
			}
			observability.Cache().OnCacheMiss(ctx, observability.TierStore)
		}

		a, err := t.source.GetArtistInfo(ctx, name)
		if err != nil || a == nil {
			return nil, err
		}
		if t.store == nil {
			return a, nil
		}
		stored, err := t.store.UpsertArtist(ctx, *a)
		if err != nil {
			return nil, storeError(err, "upsert artist %s", a.Name)
		}
		return stored, nil
	})
}

// expand adds the neighbours of a at depth+1. Neighbours previously computed
// and stored are used as they are; otherwise they are fetched from the
// source and their targets resolved in batches.
func (t *traversal) expand(ctx context.Context, a artist.Artist, depth int) error {
	if t.store != nil && a.ID != "" {
		cached, err := t.store.GetCachedEdges(ctx, a.ID)
		if err != nil {
			return storeError(err, "get cached edges of %s", a.Name)
		}
		if len(cached) > 0 {
			observability.Cache().OnCacheHit(ctx, observability.TierStore)
			for _, ce := range cached {
				t.addEdge(a, ce.Target, ce.Score, depth)
			}
			return nil
		}
	}

	similar, err := t.source.GetSimilarArtists(ctx, a.Name)
	if err != nil {
		if aborts(err) {
			return err
		}
		t.logger.Debug("similar artists lookup failed", "artist", a.Name, "err", err)
		return nil
	}
	if t.similarLimit > 0 && len(similar) > t.similarLimit {
		similar = similar[:t.similarLimit]
	}

	tasks := make([]Task[*artist.Artist], len(similar))
	for i, s := range similar {
		tasks[i] = func(ctx context.Context) (*artist.Artist, error) {
			return t.resolve(ctx, s.Name)
		}
	}
	limiter := Limiter[*artist.Artist]{Size: t.concurrency, Stop: aborts}

	var records []store.EdgeRecord
	for i, o := range limiter.Run(ctx, tasks) {
		if o.Err != nil {
			if aborts(o.Err) {
				return o.Err
			}
			if o.Err != ErrSkipped {
				t.logger.Debug("candidate lookup failed", "artist", similar[i].Name, "err", o.Err)
			}
			continue
		}
		if o.Value == nil {
			continue
		}
		target := *o.Value
		score := artist.ClampScore(similar[i].Match)
		if !t.addEdge(a, target, score, depth) {
			continue
		}
		if t.store != nil && a.ID != "" && target.ID != "" {
			records = append(records, store.EdgeRecord{
				SourceID: a.ID,
				TargetID: target.ID,
				Score:    score,
				Depth:    depth + 1,
			})
		}
	}

	if t.store != nil && len(records) > 0 {
		if err := t.store.UpsertEdges(ctx, records); err != nil {
			return storeError(err, "upsert edges of %s", a.Name)
		}
	}
	return nil
}

// addEdge records the edge source -> target and enqueues target if it has
// not been visited. Self-loops are ignored.
func (t *traversal) addEdge(source, target artist.Artist, score float64, depth int) bool {
	if artist.Blank(target.Name) || target.Key() == source.Key() {
		return false
	}
	t.data.Edges = append(t.data.Edges, artist.Edge{
		Source: source.Name,
		Target: target.Name,
		Weight: score,
	})
	if !t.visited[target.Key()] {
		t.queue = append(t.queue, frontierItem{name: target.Name, depth: depth + 1})
	}
	return true
}

// aborts reports whether err ends the current traversal instead of dropping
// one artist.
func aborts(err error) bool {
	return errors.IsStore(err) || errors.IsFatal(err) || isContextErr(err)
}

func storeError(err error, format string, args ...any) error {
	if errors.IsStore(err) {
		return err
	}
	return errors.Wrap(errors.ErrCodeStore, err, format, args...)
}
