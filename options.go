package pararray

// An Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the leaf size of the fork-join strategy. Ranges with
// at most threshold elements are processed directly. Values <= 0 select
// parallel.DefaultThreshold.
func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithParallelism sets the number of workers of the scheduler used by the
// fork-join strategy. Values <= 0 select runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithSeed makes population deterministic: the same seed, size, strategy,
// and worker count always produce the same values.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}
