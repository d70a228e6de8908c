package similarity

import (
	"context"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/observability"
)

// Build builds the graph around seed, using the persistent store when it is
// available.
//
// The store is acquired once per call. If that fails, or any store operation
// fails during the traversal, or the seed cannot be resolved in full mode,
// the traversal is re-run from scratch in degraded mode and its result is
// returned instead. Results never mix store-backed and API-only data.
// maxDepth is clamped to [0, MaxDepthFull] in full mode and to
// [0, MaxDepthDegraded] if the build falls back.
//
// Errors from the metadata source that mark its configuration as unusable
// are returned immediately without a fallback.
func (b *Builder) Build(ctx context.Context, seed string, maxDepth int) (*artist.GraphData, error) {
	if b.provider == nil {
		return b.fallback(ctx, seed, maxDepth, errors.New(errors.ErrCodeStore, "no store configured"))
	}

	s, err := b.provider.Acquire(ctx)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return b.fallback(ctx, seed, maxDepth, err)
	}

	g, err := b.buildFull(ctx, s, seed, maxDepth)
	switch {
	case err == nil:
		return g, nil
	case errors.IsFatal(err), isContextErr(err):
		return nil, err
	default:
		return b.fallback(ctx, seed, maxDepth, err)
	}
}

func (b *Builder) fallback(ctx context.Context, seed string, maxDepth int, reason error) (*artist.GraphData, error) {
	if b.provider != nil {
		b.opts.Logger.Warn("falling back to degraded build", "seed", seed, "err", reason)
	}
	observability.Build().OnFallback(ctx, seed, reason)
	return b.BuildDegraded(ctx, seed, maxDepth)
}
