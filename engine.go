package pararray

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/exascience/pararray/internal"
	"github.com/exascience/pararray/parallel"
	"github.com/exascience/pararray/sequential"
)

/*
An Engine owns the Buffer of the current run and offers the operations
of both strategies on it.

Operations on an Engine are serialized: each one returns only when all
tasks it started have terminated. The accessors Min, Max, Mean, and Stats
can be called concurrently with operations and always observe a
consistent result.

The fork-join strategy runs on a Scheduler that is created with the Engine
and released by Close.
*/
type Engine struct {
	threshold   int
	parallelism int
	seed        uint64
	seeded      bool

	mu         sync.Mutex // serializes operations
	sched      *parallel.Scheduler
	generation uint64
	closed     bool

	buf atomic.Pointer[Buffer]
}

// NewEngine returns an Engine without a buffer, configured by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.threshold <= 0 {
		e.threshold = parallel.DefaultThreshold
	}
	if !e.seeded {
		e.seed = rand.Uint64()
	}
	e.sched = parallel.NewScheduler(e.parallelism)
	tracer().Debugf("engine: threshold=%d, workers=%d", e.threshold, e.sched.Size())
	return e
}

// Threshold returns the leaf size of the fork-join strategy.
func (e *Engine) Threshold() int {
	return e.threshold
}

// Close releases the scheduler. Operations invoked afterwards return
// ErrClosed; the accessors remain usable.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.sched.Close()
	tracer().Debugf("engine: closed")
	return nil
}

// Create starts a new run with a zeroed buffer of the given size,
// discarding the previous run. It returns ErrInvalidSize if size < 0.
func (e *Engine) Create(size int) error {
	b, err := NewBuffer(size)
	if err != nil {
		return err
	}
	return e.replace(b)
}

// Load starts a new run with a buffer holding a copy of values,
// discarding the previous run.
func (e *Engine) Load(values []int32) error {
	return e.replace(NewBufferFrom(values))
}

func (e *Engine) replace(b *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.generation++
	e.buf.Store(b)
	tracer().Debugf("engine: run %d with %d values", e.generation, b.Len())
	return nil
}

// Buffer returns the buffer of the current run, or nil before the first
// Create or Load.
func (e *Engine) Buffer() *Buffer {
	return e.buf.Load()
}

// Stats returns a consistent snapshot of the current run's results, and
// whether a reduction has completed.
func (e *Engine) Stats() (Stats, bool) {
	if b := e.buf.Load(); b != nil {
		return b.Stats()
	}
	return Stats{}, false
}

// Min returns the current run's minimum; see Buffer.Min.
func (e *Engine) Min() int32 {
	if b := e.buf.Load(); b != nil {
		return b.Min()
	}
	return 0
}

// Max returns the current run's maximum; see Buffer.Max.
func (e *Engine) Max() int32 {
	if b := e.buf.Load(); b != nil {
		return b.Max()
	}
	return 0
}

// Mean returns the current run's mean; see Buffer.Mean. Before the first
// Create or Load it returns ErrNoBuffer.
func (e *Engine) Mean() (float64, error) {
	if b := e.buf.Load(); b != nil {
		return b.Mean()
	}
	return 0, ErrNoBuffer
}

// PopulateWithExecutors fills the buffer with pseudo-random values, using
// one task per batch on a pool of workers workers. It returns
// ErrInvalidWorkerCount if workers <= 0.
func (e *Engine) PopulateWithExecutors(ctx context.Context, workers int) error {
	if workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, workers)
	}
	return e.populate(ctx, "populate with executors", func(b *Buffer, seed uint64) error {
		return parallel.PartitionRange(ctx, 0, b.Len(), workers,
			func(ctx context.Context, low, high int) error {
				return b.fill(ctx, low, high, seed)
			},
		)
	})
}

// ComputeWithExecutors reduces the buffer to its minimum, maximum, and
// total, using one task per batch on a pool of workers workers. It
// returns ErrInvalidWorkerCount if workers <= 0.
func (e *Engine) ComputeWithExecutors(ctx context.Context, workers int) error {
	if workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, workers)
	}
	return e.compute(ctx, "compute with executors", func(b *Buffer, _ uint64) error {
		s, err := parallel.PartitionReduce(ctx, 0, b.Len(), workers, Stats{},
			b.accumulate, Stats.Merge)
		if err != nil {
			return err
		}
		b.commit(s)
		return nil
	})
}

// PopulateWithForkJoin fills the buffer with pseudo-random values by
// recursive bisection down to the engine's threshold.
func (e *Engine) PopulateWithForkJoin(ctx context.Context) error {
	return e.populate(ctx, "populate with fork-join", func(b *Buffer, seed uint64) error {
		return parallel.Range(ctx, e.sched, 0, b.Len(), e.threshold,
			func(ctx context.Context, low, high int) error {
				return b.fill(ctx, low, high, seed)
			},
		)
	})
}

// ComputeWithForkJoin reduces the buffer to its minimum, maximum, and
// total by recursive bisection down to the engine's threshold.
func (e *Engine) ComputeWithForkJoin(ctx context.Context) error {
	return e.compute(ctx, "compute with fork-join", func(b *Buffer, _ uint64) error {
		s, err := parallel.RangeReduce(ctx, e.sched, 0, b.Len(), e.threshold,
			b.accumulate, Stats.Merge)
		if err != nil {
			return err
		}
		b.commit(s)
		return nil
	})
}

// PopulateSequential fills the buffer with pseudo-random values in the
// calling goroutine, visiting the same leaves as PopulateWithForkJoin.
// With a fixed seed, both produce the same values.
func (e *Engine) PopulateSequential(ctx context.Context) error {
	return e.populate(ctx, "populate sequentially", func(b *Buffer, seed uint64) error {
		return sequential.Range(ctx, 0, b.Len(), e.threshold,
			func(ctx context.Context, low, high int) error {
				return b.fill(ctx, low, high, seed)
			},
		)
	})
}

// ComputeSequential reduces the buffer in the calling goroutine.
func (e *Engine) ComputeSequential(ctx context.Context) error {
	return e.compute(ctx, "compute sequentially", func(b *Buffer, _ uint64) error {
		s, err := sequential.RangeReduce(ctx, 0, b.Len(), e.threshold,
			b.accumulate, Stats.Merge)
		if err != nil {
			return err
		}
		b.commit(s)
		return nil
	})
}

// populate runs op as a populate operation. The buffer is marked partial
// until op succeeds, so an interrupted populate blocks later reductions.
func (e *Engine) populate(ctx context.Context, name string, op func(b *Buffer, seed uint64) error) error {
	return e.run(ctx, name, func(b *Buffer, seed uint64) error {
		b.setPartial(true)
		if err := op(b, seed); err != nil {
			return err
		}
		b.setPartial(false)
		return nil
	})
}

// compute runs op as a reduction. It returns ErrPartialContents if the
// last populate on the buffer was interrupted.
func (e *Engine) compute(ctx context.Context, name string, op func(b *Buffer, seed uint64) error) error {
	return e.run(ctx, name, func(b *Buffer, seed uint64) error {
		if b.Partial() {
			return fmt.Errorf("%w: %s", ErrPartialContents, name)
		}
		return op(b, seed)
	})
}

// run executes op on the current buffer. The buffer's results are
// invalidated first and only become valid again if op commits new ones.
// A context error returned by op is reported as ErrInterrupted.
func (e *Engine) run(ctx context.Context, name string, op func(b *Buffer, seed uint64) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	b := e.buf.Load()
	if b == nil {
		return ErrNoBuffer
	}
	b.invalidate()
	tracer().Debugf("engine: %s, %d values", name, b.Len())
	err := op(b, internal.SplitMix(e.seed, e.generation))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		tracer().Errorf("engine: %s interrupted: %v", name, err)
		return fmt.Errorf("%w: %s: %w", ErrInterrupted, name, err)
	}
	return err
}
