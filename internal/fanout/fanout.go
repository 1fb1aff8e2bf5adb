// Package fanout runs index-tagged work on a bounded pool of goroutines and
// gathers the results back into input order.
package fanout

import (
	"context"
	"sync"
)

// Run calls fn for every index in [0, n) with at most workers calls in flight
// and returns the results ordered by index. When ctx is cancelled no further
// calls are issued; calls already running finish, and Run returns the partial
// results together with ctx.Err(). Slots for indexes never issued hold the
// zero value.
func Run[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, index int) T) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, n)

	var wg sync.WaitGroup
	slots := make(chan struct{}, workers)
issue:
	for i := range n {
		select {
		case <-ctx.Done():
			break issue
		case slots <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-slots
			break
		}
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-slots }()
			results[index] = fn(ctx, index)
		}(i)
	}
	wg.Wait()
	return results, ctx.Err()
}
