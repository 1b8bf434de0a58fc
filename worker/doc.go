// Package worker runs a function over a batch of items in parallel and
// returns the results in input order.
//
// Example usage:
//
//	batch, err := worker.Map(ctx, paths, 4, func(ctx context.Context, i int, path string) (*Result, error) {
//	    return process(ctx, path)
//	})
//	for _, r := range batch.Results {
//	    // r.Index == position in paths
//	}
package worker
