package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/skirmish/pkg/sequence"
)

// ParallelMap applies mapFn to each element with at most workers goroutines,
// preserving input order in the result. On error the partial results are
// discarded.
func ParallelMap[T any, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, val := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := mapFn(gctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
