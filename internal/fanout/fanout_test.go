package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPreservesIndexOrder(t *testing.T) {
	results, err := Run(context.Background(), 20, 4, func(_ context.Context, i int) int {
		// Later indexes finish first.
		time.Sleep(time.Duration(20-i) * time.Millisecond / 4)
		return i * i
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for i, got := range results {
		if got != i*i {
			t.Fatalf("results[%d] = %d, want %d", i, got, i*i)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	_, err := Run(context.Background(), 30, 3, func(_ context.Context, _ int) struct{} {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := peak.Load(); got > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", got)
	}
}

func TestRunStopsIssuingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	results, err := Run(ctx, 10, 1, func(_ context.Context, i int) int {
		calls.Add(1)
		if i == 2 {
			cancel()
		}
		return i + 1
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 issued calls, got %d", got)
	}
	if results[2] != 3 || results[3] != 0 {
		t.Fatalf("unexpected partial results %v", results)
	}
}

func TestRunEmpty(t *testing.T) {
	results, err := Run(context.Background(), 0, 4, func(context.Context, int) int { return 1 })
	if err != nil || len(results) != 0 {
		t.Fatalf("unexpected result %v, %v", results, err)
	}
}
