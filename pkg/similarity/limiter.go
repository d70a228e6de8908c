package similarity

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the batch size used when none is configured.
const DefaultConcurrency = 5

// ErrSkipped is the outcome of a task that was never started because an
// earlier batch produced an error matching [Limiter.Stop].
var ErrSkipped = errors.New("task skipped")

// Task is one unit of work run by a [Limiter].
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the result of one task.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Limiter runs tasks in sequential batches of at most Size tasks. A batch
// runs concurrently and completes fully before the next one starts. A Size
// of 1 runs the tasks one at a time.
type Limiter[T any] struct {
	Size int

	// Stop, if set, is consulted after each batch. When it reports true for
	// any error of the batch, the remaining batches are not started and
	// their outcomes are ErrSkipped.
	Stop func(error) bool
}

// Run executes tasks and returns one outcome per task in submission order.
// Task errors never abort the batch they occur in. If ctx is done before a
// batch starts, that batch and all later ones fail with ctx.Err().
func (l Limiter[T]) Run(ctx context.Context, tasks []Task[T]) []Outcome[T] {
	size := l.Size
	if size <= 0 {
		size = DefaultConcurrency
	}
	out := make([]Outcome[T], len(tasks))

	for start := 0; start < len(tasks); start += size {
		end := min(start+size, len(tasks))
		if err := ctx.Err(); err != nil {
			fill(out[start:], err)
			break
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				v, err := tasks[i](ctx)
				out[i] = Outcome[T]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()

		if l.stopped(out[start:end]) {
			fill(out[end:], ErrSkipped)
			break
		}
	}
	return out
}

func (l Limiter[T]) stopped(batch []Outcome[T]) bool {
	if l.Stop == nil {
		return false
	}
	for _, o := range batch {
		if o.Err != nil && l.Stop(o.Err) {
			return true
		}
	}
	return false
}

func fill[T any](outs []Outcome[T], err error) {
	for i := range outs {
		outs[i].Err = err
	}
}
