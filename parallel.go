package i18nmig

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachFile runs fn for every path with at most workers calls in flight.
// fn owns slot i of whatever result slice the caller allocated, so no
// locking is needed. File-level problems must be recorded by fn; the only
// error returned is the context's.
func forEachFile(ctx context.Context, workers int, paths []string, fn func(ctx context.Context, i int, path string)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(ctx, i, path)
			return nil
		})
	}

	return g.Wait()
}
