package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Func processes the item at index i.
type Func[T, R any] func(ctx context.Context, i int, item T) (R, error)

// Result is the outcome of one item.
type Result[R any] struct {
	// Index is the item's position in the input
	Index int

	Value R

	// Err is the error returned by the item's Func
	Err error

	Duration time.Duration
}

// Batch holds the results of Map in input order.
type Batch[R any] struct {
	Results []Result[R]

	// Completed counts items whose Func ran, failed ones included
	Completed int

	// Failed counts items whose Func returned an error
	Failed int

	TotalDuration time.Duration
}

// Map calls fn for every item using at most workers goroutines; workers <= 1
// runs in the calling goroutine. An error from fn is recorded on its Result
// and does not stop the batch. Map stops scheduling items once ctx is done
// and returns ctx.Err() with the results completed so far.
func Map[T, R any](ctx context.Context, items []T, workers int, fn Func[T, R]) (*Batch[R], error) {
	results := make([]Result[R], len(items))
	done := make([]bool, len(items))

	run := func(ctx context.Context, i int) {
		start := time.Now()
		v, err := fn(ctx, i, items[i])
		results[i] = Result[R]{Index: i, Value: v, Err: err, Duration: time.Since(start)}
		done[i] = true
	}

	var err error
	if workers <= 1 || len(items) <= 1 {
		err = sequential(ctx, len(items), run)
	} else {
		err = parallel(ctx, len(items), workers, run)
	}

	batch := &Batch[R]{Results: make([]Result[R], 0, len(items))}
	for i, r := range results {
		if !done[i] {
			continue
		}
		batch.Results = append(batch.Results, r)
		batch.Completed++
		batch.TotalDuration += r.Duration
		if r.Err != nil {
			batch.Failed++
		}
	}
	return batch, err
}

func sequential(ctx context.Context, n int, run func(context.Context, int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		run(ctx, i)
	}
	return nil
}

func parallel(ctx context.Context, n, workers int, run func(context.Context, int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
