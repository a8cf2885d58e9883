package internal

import (
	"context"
	"errors"
	"testing"
)

func TestChunksCoversRange(t *testing.T) {
	for _, size := range []int{0, 1, ChunkSize - 1, ChunkSize, 3*ChunkSize + 17} {
		next := 5
		err := Chunks(context.Background(), 5, 5+size, func(low, high int) {
			if low != next {
				t.Fatalf("size %d: chunk starts at %d, expected %d", size, low, next)
			}
			if high <= low || high-low > ChunkSize {
				t.Fatalf("size %d: invalid chunk [%d,%d)", size, low, high)
			}
			next = high
		})
		if err != nil {
			t.Fatalf("size %d: unexpected error %v", size, err)
		}
		if next != 5+size {
			t.Errorf("size %d: chunks end at %d, expected %d", size, next, 5+size)
		}
	}
}

func TestChunksStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Chunks(ctx, 0, 10*ChunkSize, func(low, high int) {
		calls++
		if calls == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 chunks before cancellation, got %d", calls)
	}
}

func TestSplitMixStreamsDiffer(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := uint64(0); i < 1000; i++ {
		v := SplitMix(42, i)
		if seen[v] {
			t.Fatalf("SplitMix(42, %d) repeats an earlier value", i)
		}
		seen[v] = true
	}
	if SplitMix(1, 0) == SplitMix(2, 0) {
		t.Errorf("different seeds yield the same stream value")
	}
}

func TestWrapPanicKeepsRuntimeErrors(t *testing.T) {
	var p interface{}
	func() {
		defer func() { p = recover() }()
		var s []int
		_ = s[1]
	}()
	if _, ok := WrapPanic(p).(interface{ RuntimeError() }); !ok {
		t.Errorf("wrapped runtime error lost its RuntimeError method")
	}
	if WrapPanic(nil) != nil {
		t.Errorf("WrapPanic(nil) should be nil")
	}
}
