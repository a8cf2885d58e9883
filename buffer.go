package pararray

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/exascience/pararray/internal"
)

/*
A Buffer is a fixed-length array of 32-bit integers together with the
committed results of its last reduction.

The values are written and read by the tasks of a strategy, each task
owning a disjoint range, so they carry no lock. The results (minimum,
maximum, and total) are guarded by a single lock and are always updated
and read as one unit.
*/
type Buffer struct {
	values []int32

	mu      sync.RWMutex // guards stats, valid, and partial
	stats   Stats
	valid   bool
	partial bool // a populate was interrupted
}

// NewBuffer allocates a zeroed Buffer of the given size, with no valid
// results. It returns ErrInvalidSize if size < 0.
func NewBuffer(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Buffer{values: make([]int32, size)}, nil
}

// NewBufferFrom returns a Buffer holding a copy of values, with no valid
// results.
func NewBufferFrom(values []int32) *Buffer {
	b := &Buffer{values: make([]int32, len(values))}
	copy(b.values, values)
	return b
}

// Len returns the number of values in b.
func (b *Buffer) Len() int {
	return len(b.values)
}

// Values returns the values of b. The slice aliases the buffer and must
// not be modified while an operation is running on it.
func (b *Buffer) Values() []int32 {
	return b.values
}

// Stats returns a consistent snapshot of the results of the last completed
// reduction, and whether such a reduction exists.
func (b *Buffer) Stats() (Stats, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats, b.valid
}

// Min returns the committed minimum, or 0 if no reduction has completed
// since the values last changed.
func (b *Buffer) Min() int32 {
	s, _ := b.Stats()
	return s.Min
}

// Max returns the committed maximum, or 0 if no reduction has completed
// since the values last changed.
func (b *Buffer) Max() int32 {
	s, _ := b.Stats()
	return s.Max
}

// Mean returns the committed total divided by the length of b. For an
// empty buffer it returns ErrDivideByZero. If no reduction has completed
// since the values last changed, it returns 0 and a nil error.
func (b *Buffer) Mean() (float64, error) {
	if len(b.values) == 0 {
		return 0, ErrDivideByZero
	}
	s, valid := b.Stats()
	if !valid {
		return 0, nil
	}
	return s.Mean()
}

func (b *Buffer) commit(s Stats) {
	b.mu.Lock()
	b.stats, b.valid = s, true
	b.mu.Unlock()
}

func (b *Buffer) invalidate() {
	b.mu.Lock()
	b.stats, b.valid = Stats{}, false
	b.mu.Unlock()
}

// Partial reports whether the last populate operation on b was
// interrupted, leaving values that are partly new and partly stale.
func (b *Buffer) Partial() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.partial
}

func (b *Buffer) setPartial(partial bool) {
	b.mu.Lock()
	b.partial = partial
	b.mu.Unlock()
}

// fill writes pseudo-random values to values[low:high], drawn from a
// generator seeded with seed and low only, so the values written depend on
// the range but not on scheduling.
func (b *Buffer) fill(ctx context.Context, low, high int, seed uint64) error {
	rnd := rand.New(rand.NewPCG(seed, internal.SplitMix(seed, uint64(low))))
	return internal.Chunks(ctx, low, high, func(low, high int) {
		for i := low; i < high; i++ {
			b.values[i] = int32(rnd.Uint32())
		}
	})
}

// accumulate computes the Stats of values[low:high], checking ctx between
// chunks.
func (b *Buffer) accumulate(ctx context.Context, low, high int) (s Stats, err error) {
	err = internal.Chunks(ctx, low, high, func(low, high int) {
		s = s.Merge(Accumulate(b.values, low, high))
	})
	return
}
