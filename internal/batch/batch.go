// Package batch runs many optimization requests under a bounded
// concurrency limit while preserving input order in the results.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/imgpipe/internal/asset"
)

// Result is one batch slot. Err is set when that item failed; failures
// are captured per slot and never abort sibling requests.
type Result struct {
	Asset *asset.OptimizedAsset
	Err   error
}

// Run invokes fn for indices 0..n-1 with at most concurrency calls in
// flight at any instant. Results index-correspond to inputs regardless
// of completion order. A concurrency below 1 is treated as 1.
func Run(ctx context.Context, n, concurrency int, fn func(ctx context.Context, i int) (*asset.OptimizedAsset, error)) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			a, err := fn(gctx, i)
			results[i] = Result{Asset: a, Err: err}
			// Per-slot capture: never return the error, so one
			// failed item cannot cancel the group.
			return nil
		})
	}
	g.Wait()

	return results
}
