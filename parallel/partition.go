package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/exascience/pararray/internal"
)

// A Batch is a half-open interval of indices, including Low but excluding
// High, with 0 <= Low <= High.
type Batch struct {
	Low, High int
}

// Len returns the number of indices in b.
func (b Batch) Len() int { return b.High - b.Low }

// Empty reports whether b contains no indices.
func (b Batch) Empty() bool { return b.High == b.Low }

func (b Batch) String() string {
	return fmt.Sprintf("[%d,%d)", b.Low, b.High)
}

// Partition divides the range from low to high into n contiguous batches
// of (high - low) / n indices each, with the last batch absorbing the
// remainder, and returns the non-empty ones. The batches are disjoint, in
// ascending order, and their union is the full range.
//
// If n exceeds the size of the range, every batch but the last is empty,
// so Partition returns at most one batch. The result never has more than
// min(n, high - low) elements, regardless of n.
//
// Partition panics if low < 0, if high < low, or if n <= 0.
func Partition(low, high, n int) []Batch {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if n <= 0 {
		panic(fmt.Sprintf("invalid number of batches: %v", n))
	}
	if low == high {
		return nil
	}
	size := (high - low) / n
	if size == 0 {
		return []Batch{{low, high}}
	}
	batches := make([]Batch, n)
	for i := range batches {
		start := low + i*size
		end := start + size
		if i == n-1 {
			end = high
		}
		batches[i] = Batch{start, end}
	}
	return batches
}

// PartitionRange receives a range, a worker count n, and a range function
// f, divides the range with Partition, and invokes f for each batch on a
// pool of at most n workers. Empty batches are never dispatched.
//
// PartitionRange returns only when all invocations of f have terminated,
// returning the first error value that is different from nil. The context
// passed to f is canceled as soon as any invocation fails.
//
// If one or more invocations of f panic, the corresponding goroutines
// recover the panics, and PartitionRange eventually panics with the
// left-most recovered panic value.
//
// PartitionRange panics if low < 0, if high < low, or if n <= 0.
func PartitionRange(
	ctx context.Context,
	low, high, n int,
	f func(ctx context.Context, low, high int) error,
) error {
	_, err := PartitionReduce(ctx, low, high, n, struct{}{},
		func(ctx context.Context, low, high int) (struct{}, error) {
			return struct{}{}, f(ctx, low, high)
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	return err
}

// PartitionReduce receives a range, a worker count n, an identity value
// zero, a range reducer reduce, and a pair reducer pair, divides the range
// with Partition, and invokes the range reducer for each batch on a pool
// of at most n workers. Memory use is bounded by the number of batches,
// not by n.
//
// Each worker stores its result in its own slot, so workers never contend
// with each other. After all workers have terminated, the results are
// folded in batch order, starting from zero, by the pair reducer.
//
// PartitionReduce returns the first error value that is different from
// nil, in which case the result is zero.
//
// PartitionReduce panics if low < 0, if high < low, or if n <= 0.
func PartitionReduce[T any](
	ctx context.Context,
	low, high, n int,
	zero T,
	reduce func(ctx context.Context, low, high int) (T, error),
	pair func(x, y T) T,
) (T, error) {
	batches := Partition(low, high, n)
	results := make([]T, len(batches))
	panics := make([]interface{}, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, batch := range batches {
		g.Go(func() (err error) {
			defer func() {
				panics[i] = recover()
			}()
			results[i], err = reduce(gctx, batch.Low, batch.High)
			return
		})
	}
	err := g.Wait()
	for _, p := range panics {
		if p != nil {
			panic(internal.WrapPanic(p))
		}
	}
	if err != nil {
		return zero, err
	}
	result := zero
	for _, r := range results {
		result = pair(result, r)
	}
	return result, nil
}
