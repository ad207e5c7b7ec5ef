package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunParallelWithResults runs funcs with at most limit running at once
// (limit <= 0 means no bound). Results and errors are indexed like funcs;
// one failure does not cancel the others. Cancelling ctx does.
func RunParallelWithResults[T any](ctx context.Context, limit int, funcs []func(ctx context.Context) (T, error)) ([]T, []error) {
	if len(funcs) == 0 {
		return nil, nil
	}

	results := make([]T, len(funcs))
	errs := make([]error, len(funcs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range funcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(ctx)
			return nil // a non-nil return would cancel the siblings
		})
	}

	_ = g.Wait()
	return results, errs
}

// Failed counts the non-nil errors.
func Failed(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
