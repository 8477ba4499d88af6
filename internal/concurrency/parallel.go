// Package concurrency runs bounded worker pools whose results keep input order.
package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures a worker pool.
type ParallelOptions struct {
	// MaxWorkers caps the goroutines in flight. <=0 means DefaultWorkers.
	MaxWorkers int
}

const DefaultWorkers = 5

func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: DefaultWorkers}
}

// ProcessParallel calls fn for every item with at most MaxWorkers running at once.
// results[i] and errs[i] belong to items[i], whatever order the workers finish in.
// Items never started because ctx was cancelled get ctx.Err().
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	fn func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = fn(ctx, i, items[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(items); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(items); i++ {
		errs[i] = ctx.Err()
	}
	return results, errs
}

// ForEach is ProcessParallel for side effects only. It returns the non-nil errors.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	fn func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})
	return Compact(errs)
}

// Compact drops the nil entries of errs.
func Compact(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
