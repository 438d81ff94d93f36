// Package parallel maps a function over independent jobs with a bounded
// number of goroutines. Results are gathered by position, so the output order
// never depends on completion order.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every job index in [0, n) using at most workers
// goroutines. The first error cancels the remaining jobs and is returned.
func Map[T any](ctx context.Context, n int, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	res := make([]T, n)
	if n == 0 {
		return res, ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			v, err := fn(gCtx, i)
			if err != nil {
				return err
			}
			// each job owns its slot
			res[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
