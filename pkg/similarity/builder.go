package similarity

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/graph"
	"github.com/matzehuels/artistgraph/pkg/observability"
	"github.com/matzehuels/artistgraph/pkg/store"
)

const (
	// MaxDepthFull caps the hop depth of full-mode builds.
	MaxDepthFull = 3

	// MaxDepthDegraded caps the hop depth of degraded-mode builds.
	MaxDepthDegraded = 2

	// DefaultDegradedSimilarLimit is the number of candidates expanded per
	// artist in degraded mode.
	DefaultDegradedSimilarLimit = 10
)

// Mode names reported to logs and observability hooks.
const (
	ModeFull     = "full"
	ModeDegraded = "degraded"
)

// Options configures a [Builder]. Zero values select the defaults.
type Options struct {
	// Concurrency is the number of candidates resolved at once per expansion
	// in full mode. Defaults to [DefaultConcurrency].
	Concurrency int

	// DegradedSimilarLimit bounds the candidates expanded per artist in
	// degraded mode. Defaults to [DefaultDegradedSimilarLimit].
	DegradedSimilarLimit int

	// PruneDanglingEdges removes edges whose target could not be resolved
	// from the returned graph. By default they are kept.
	PruneDanglingEdges bool

	// Logger receives build progress. Defaults to log.Default().
	Logger *log.Logger
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.DegradedSimilarLimit <= 0 {
		o.DegradedSimilarLimit = DefaultDegradedSimilarLimit
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Builder constructs similarity graphs from a metadata source and an
// optional persistent store.
//
// A Builder holds no per-build state and is safe for concurrent use.
type Builder struct {
	source   MetadataSource
	provider store.Provider
	opts     Options
}

// NewBuilder creates a Builder. A nil provider makes every [Builder.Build]
// run in degraded mode.
func NewBuilder(source MetadataSource, provider store.Provider, opts Options) *Builder {
	return &Builder{source: source, provider: provider, opts: opts.WithDefaults()}
}

// Search looks up artists matching query in the metadata source.
func (b *Builder) Search(ctx context.Context, query string) ([]artist.Artist, error) {
	return b.source.SearchArtists(ctx, query)
}

// BuildDegraded builds the graph around seed from the metadata source alone.
// maxDepth is clamped to [0, MaxDepthDegraded].
func (b *Builder) BuildDegraded(ctx context.Context, seed string, maxDepth int) (*artist.GraphData, error) {
	depth := clampDepth(maxDepth, MaxDepthDegraded)
	t := newTraversal(b.source, nil, b.opts.Logger, depth, 1, b.opts.DegradedSimilarLimit)
	return b.run(ctx, t, ModeDegraded, seed)
}

func (b *Builder) buildFull(ctx context.Context, s store.Store, seed string, maxDepth int) (*artist.GraphData, error) {
	depth := clampDepth(maxDepth, MaxDepthFull)
	t := newTraversal(b.source, s, b.opts.Logger, depth, b.opts.Concurrency, 0)
	return b.run(ctx, t, ModeFull, seed)
}

func (b *Builder) run(ctx context.Context, t *traversal, mode, seed string) (*artist.GraphData, error) {
	logger := b.opts.Logger.With("seed", seed, "mode", mode)
	logger.Debug("building graph", "depth", t.maxDepth)
	observability.Build().OnBuildStart(ctx, seed, mode)
	start := time.Now()
	t.mode = mode

	g, err := t.run(ctx, seed)
	duration := time.Since(start)
	if err != nil {
		observability.Build().OnBuildComplete(ctx, seed, mode, 0, 0, duration, err)
		return nil, err
	}
	if b.opts.PruneDanglingEdges {
		pruned := graph.PruneDangling(*g)
		g = &pruned
	}

	observability.Build().OnBuildComplete(ctx, seed, mode, len(g.Nodes), len(g.Edges), duration, nil)
	logger.Info("graph built", "nodes", len(g.Nodes), "edges", len(g.Edges), "duration", duration.Round(time.Millisecond))
	return g, nil
}

func clampDepth(depth, limit int) int {
	return max(0, min(depth, limit))
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
