// Package parallel provides functions for processing ranges of indices in
// parallel, following two strategies.
//
// The partitioning strategy (Partition, PartitionRange, PartitionReduce)
// divides a range into a fixed number of contiguous batches and processes
// each batch by its own worker, waiting for all of them at a single
// barrier.
//
// The fork-join strategy (Range, RangeReduce) recursively bisects a range
// until subranges are at or below a threshold, and processes each such
// leaf directly. Every split waits only for its own two halves, and the
// halves are mapped onto the workers of a Scheduler.
package parallel

import (
	"context"
	"fmt"
	"sync"

	"github.com/exascience/pararray/internal"
)

// DefaultThreshold is the leaf size below which the fork-join functions
// stop splitting. Below it, forking a task costs more than the work it
// would save.
const DefaultThreshold = 10000

// Do receives zero or more thunks and executes them in parallel.
//
// Each thunk is invoked in its own goroutine, and Do returns only
// when all thunks have terminated.
//
// If one or more thunks panic, the corresponding goroutines recover
// the panics, and Do eventually panics with the left-most
// recovered panic value.
func Do(thunks ...func()) {
	switch len(thunks) {
	case 0:
		return
	case 1:
		thunks[0]()
		return
	}
	var p interface{}
	var wg sync.WaitGroup
	wg.Add(1)
	switch len(thunks) {
	case 2:
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			thunks[1]()
		}()
		thunks[0]()
	default:
		half := len(thunks) / 2
		go func() {
			defer func() {
				p = recover()
				wg.Done()
			}()
			Do(thunks[half:]...)
		}()
		Do(thunks[:half]...)
	}
	wg.Wait()
	if p != nil {
		panic(internal.WrapPanic(p))
	}
}

// Range receives a scheduler, a range, a threshold, and a range function
// f, recursively bisects the range at its midpoint until subranges have
// at most threshold elements, and invokes f for each of these leaves,
// covering the half-open interval from low to high, including low but
// excluding high.
//
// If the range exceeds threshold, each leaf has at least threshold/2
// (rounded down) and at most threshold elements. The leaf count is thus
// bounded by the smallest power of two that is at least
// ceil((high-low)/threshold), and is usually larger than that quotient:
// 100000 elements at threshold 10000 yield 16 leaves of 6250.
//
// The two halves of each split may execute in parallel on the workers of
// s, and each split returns only when both its halves have terminated.
// Range returns the left-most error value that is different from nil.
//
// The context is checked before each split; once it is done, no further
// leaves are started and its error is returned.
//
// Range panics if low < 0, if high < low, or if threshold <= 0.
func Range(
	ctx context.Context,
	s *Scheduler,
	low, high, threshold int,
	f func(ctx context.Context, low, high int) error,
) error {
	_, err := RangeReduce(ctx, s, low, high, threshold,
		func(ctx context.Context, low, high int) (struct{}, error) {
			return struct{}{}, f(ctx, low, high)
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	return err
}

// RangeReduce receives a scheduler, a range, a threshold, a range reducer
// reduce, and a pair reducer pair, recursively bisects the range at its
// midpoint until subranges have at most threshold elements, and invokes
// the range reducer for each of these leaves. The results of sibling
// subranges are then combined by the pair reducer, left before right, so
// that no shared state is needed to merge them.
//
// The two halves of each split may execute in parallel on the workers of
// s, and each split returns only when both its halves have terminated.
// RangeReduce returns the left-most error value that is different from
// nil, in which case the result is the zero value of T.
//
// RangeReduce panics if low < 0, if high < low, or if threshold <= 0.
func RangeReduce[T any](
	ctx context.Context,
	s *Scheduler,
	low, high, threshold int,
	reduce func(ctx context.Context, low, high int) (T, error),
	pair func(x, y T) T,
) (T, error) {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if threshold <= 0 {
		panic(fmt.Sprintf("invalid threshold: %v", threshold))
	}
	var recur func(int, int) (T, error)
	recur = func(low, high int) (result T, err error) {
		if err = ctx.Err(); err != nil {
			return
		}
		if high-low <= threshold {
			return reduce(ctx, low, high)
		}
		mid := low + (high-low)/2
		var left, right T
		var err0, err1 error
		s.Fork(
			func() { left, err0 = recur(low, mid) },
			func() { right, err1 = recur(mid, high) },
		)
		if err0 != nil {
			err = err0
		} else if err1 != nil {
			err = err1
		} else {
			result = pair(left, right)
		}
		return
	}
	return recur(low, high)
}
