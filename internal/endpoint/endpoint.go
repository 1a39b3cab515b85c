// Package endpoint contains concurrency helpers for running the same read
// across multiple RPC endpoints.
//
// Crosscheck fans one allowance query out to every configured endpoint,
// collects per-endpoint results, and keeps going even if some endpoints
// fail. This package centralizes that pattern.
package endpoint

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmagro/allowcheck/internal/config"
)

// Result wraps one endpoint's response with metadata.
type Result[T any] struct {
	Endpoint string
	Index    int
	Value    T
	Err      error
}

// ExecuteAll runs fn concurrently for each endpoint and collects results
// in endpoint order, not completion order.
//
// The helper does not fail fast: every endpoint is attempted and errors
// are recorded per result, so one bad endpoint cannot hide the answers of
// the others. Context cancellation still short-circuits work inside fn.
func ExecuteAll[T any](
	ctx context.Context,
	endpoints []config.Endpoint,
	fn func(ctx context.Context, ep config.Endpoint) (T, error),
) []Result[T] {
	results := make([]Result[T], len(endpoints))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		i, ep := i, ep // capture loop vars
		g.Go(func() error {
			val, err := fn(gctx, ep)
			mu.Lock()
			results[i] = Result[T]{
				Endpoint: ep.Name,
				Index:    i,
				Value:    val,
				Err:      err,
			}
			mu.Unlock()
			return nil // don't fail-fast; collect all results
		})
	}

	_ = g.Wait()
	return results
}
