package similarity

import "context"

// Progress is a snapshot of a running build.
type Progress struct {
	Mode  string // ModeFull or ModeDegraded
	Nodes int    // artists added so far
	Edges int    // edges recorded so far
	Depth int    // depth of the most recently added artist
}

// ProgressFunc receives build snapshots. It is called from the traversal
// loop once per added artist and must return quickly.
//
// A build that falls back to degraded mode starts over, so Nodes and Edges
// can go down again when Mode changes.
type ProgressFunc func(Progress)

type progressKey struct{}

// WithProgress returns a context whose builds report their progress to fn.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFromContext(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(Progress) {}
}
