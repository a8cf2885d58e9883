// Package sequential provides sequential implementations of the
// fork-join functions provided by the parallel package. This is useful
// for testing and debugging, and as a baseline when measuring speedups.
//
// The implementations visit the same leaves in the same order as their
// parallel counterparts, so results of associative reducers are
// identical.
package sequential

import (
	"context"
	"fmt"
)

// Range receives a range, a threshold, and a range function f,
// recursively bisects the range at its midpoint until subranges have at
// most threshold elements, and invokes f for each of these leaves
// sequentially, from left to right, covering the half-open interval from
// low to high, including low but excluding high.
//
// Range returns the left-most error value that is different from nil.
// Once the context is done, no further leaves are started.
//
// Range panics if low < 0, if high < low, or if threshold <= 0.
func Range(
	ctx context.Context,
	low, high, threshold int,
	f func(ctx context.Context, low, high int) error,
) error {
	_, err := RangeReduce(ctx, low, high, threshold,
		func(ctx context.Context, low, high int) (struct{}, error) {
			return struct{}{}, f(ctx, low, high)
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	return err
}

// RangeReduce receives a range, a threshold, a range reducer reduce, and
// a pair reducer pair, recursively bisects the range at its midpoint until
// subranges have at most threshold elements, and invokes the range reducer
// for each of these leaves sequentially. The results of sibling subranges
// are combined by the pair reducer, left before right.
//
// RangeReduce returns the left-most error value that is different from
// nil, in which case the result is the zero value of T.
//
// RangeReduce panics if low < 0, if high < low, or if threshold <= 0.
func RangeReduce[T any](
	ctx context.Context,
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
		left, err := recur(low, mid)
		if err != nil {
			return
		}
		right, err := recur(mid, high)
		if err != nil {
			return
		}
		result = pair(left, right)
		return
	}
	return recur(low, high)
}
