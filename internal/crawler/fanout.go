package crawler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs one level. produce is called once in its own goroutine and
// hands children to emit; work is run in a fresh goroutine per child.
// Results are gathered over a channel. If produce or any work call fails,
// the first error is returned after every goroutine has finished and the
// results are discarded.
func fanOut[I, R any](
	ctx context.Context,
	produce func(emit func(I) error) error,
	work func(context.Context, I) (R, error),
) ([]R, error) {
	var (
		g       errgroup.Group
		items   = make(chan I)
		results = make(chan R)
		done    = make(chan []R, 1)
	)

	go func() {
		var out []R
		for r := range results {
			out = append(out, r)
		}
		done <- out
	}()

	g.Go(func() error {
		defer close(items)
		return produce(func(item I) error {
			select {
			case items <- item:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	for item := range items {
		g.Go(func() error {
			r, err := work(ctx, item)
			if err != nil {
				return err
			}
			results <- r
			return nil
		})
	}

	err := g.Wait()
	close(results)
	out := <-done
	if err != nil {
		return nil, err
	}
	return out, nil
}
