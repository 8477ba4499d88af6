package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.MaxWorkers != DefaultWorkers {
		t.Errorf("Expected MaxWorkers to be %d, got %d", DefaultWorkers, opts.MaxWorkers)
	}
}

func TestProcessParallel(t *testing.T) {
	ctx := context.Background()
	letter := func(ctx context.Context, index int, item int) (string, error) {
		return string(rune('a' + item - 1)), nil
	}

	results, errs := ProcessParallel(ctx, []int{}, DefaultOptions(), letter)
	if len(results) != 0 || len(errs) != 0 {
		t.Errorf("Expected empty output for empty input, got %v / %v", results, errs)
	}

	input := []int{1, 2, 3, 4, 5}
	for _, opts := range []ParallelOptions{DefaultOptions(), {MaxWorkers: 2}, {MaxWorkers: -1}, {MaxWorkers: 50}} {
		results, errs = ProcessParallel(ctx, input, opts, letter)
		if len(Compact(errs)) != 0 {
			t.Errorf("workers=%d: expected no errors, got %v", opts.MaxWorkers, errs)
		}
		expected := []string{"a", "b", "c", "d", "e"}
		for i, res := range results {
			if res != expected[i] {
				t.Errorf("workers=%d: expected result at index %d to be %s, got %s", opts.MaxWorkers, i, expected[i], res)
			}
		}
	}
}

func TestProcessParallelErrorsAligned(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}
	_, errs := ProcessParallel(context.Background(), input, DefaultOptions(), func(ctx context.Context, index int, item int) (int, error) {
		if item%2 == 0 {
			return 0, errors.New("even number error")
		}
		return item, nil
	})

	if len(errs) != len(input) {
		t.Fatalf("Expected %d error slots, got %d", len(input), len(errs))
	}
	for i, err := range errs {
		wantErr := input[i]%2 == 0
		if (err != nil) != wantErr {
			t.Errorf("index %d: expected error=%v, got %v", i, wantErr, err)
		}
	}
	if len(Compact(errs)) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(Compact(errs)))
	}
}

func TestProcessParallelOrder(t *testing.T) {
	input := []int{5, 3, 1, 4, 2}

	results, errs := ProcessParallel(context.Background(), input, DefaultOptions(), func(ctx context.Context, index int, item int) (int, error) {
		time.Sleep(time.Duration(item) * 10 * time.Millisecond)
		return item, nil
	})

	if len(Compact(errs)) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
	for i, res := range results {
		if res != input[i] {
			t.Errorf("Expected result at index %d to be %d, got %d", i, input[i], res)
		}
	}
}

func TestProcessParallelBound(t *testing.T) {
	var inFlight, peak int32
	input := make([]int, 20)

	ProcessParallel(context.Background(), input, ParallelOptions{MaxWorkers: 3}, func(ctx context.Context, index int, item int) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 0, nil
	})

	if peak > 3 {
		t.Errorf("Expected at most 3 workers in flight, got %d", peak)
	}
}

func TestProcessParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	input := make([]int, 50)
	_, errs := ProcessParallel(ctx, input, ParallelOptions{MaxWorkers: 1}, func(ctx context.Context, index int, item int) (int, error) {
		atomic.AddInt32(&ran, 1)
		return 0, nil
	})

	if int(ran) == len(input) {
		t.Error("Expected cancellation to stop feeding work")
	}
	cancelled := 0
	for _, err := range errs {
		if errors.Is(err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled+int(ran) != len(input) {
		t.Errorf("Expected every item to either run or report cancellation, ran=%d cancelled=%d", ran, cancelled)
	}
}

func TestForEach(t *testing.T) {
	ctx := context.Background()

	if errs := ForEach(ctx, []int{}, DefaultOptions(), func(ctx context.Context, index int, item int) error { return nil }); errs != nil {
		t.Errorf("Expected nil errors for empty input, got %v", errs)
	}

	input := []int{1, 2, 3, 4, 5}
	seen := make([]int, len(input))
	errs := ForEach(ctx, input, ParallelOptions{MaxWorkers: 2}, func(ctx context.Context, index int, item int) error {
		seen[index] = item
		if item%2 == 0 {
			return errors.New("even number error")
		}
		return nil
	})
	if len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs))
	}
	for i := range input {
		if seen[i] != input[i] {
			t.Errorf("Expected item %d to be visited", input[i])
		}
	}
}
