package pararray

import "errors"

var (
	// ErrInvalidSize is returned when a run is created with a negative size.
	ErrInvalidSize = errors.New("pararray: invalid size")

	// ErrInvalidWorkerCount is returned when the executors strategy is asked
	// to run with zero or fewer workers.
	ErrInvalidWorkerCount = errors.New("pararray: invalid worker count")

	// ErrInterrupted is returned when the wait for an operation's tasks was
	// canceled before all of them finished. The returned error also wraps
	// the context's error. The buffer's results are reported as invalid
	// afterwards. An interrupted populate leaves the contents partly
	// written; reductions then fail with ErrPartialContents until the
	// buffer is populated again or recreated with Create or Load.
	ErrInterrupted = errors.New("pararray: operation interrupted")

	// ErrPartialContents is returned by reductions over a buffer whose last
	// populate operation was interrupted.
	ErrPartialContents = errors.New("pararray: buffer partially populated")

	// ErrDivideByZero is returned when the mean of an empty buffer is
	// requested.
	ErrDivideByZero = errors.New("pararray: mean of empty buffer")

	// ErrNoBuffer is returned by operations invoked before Create or Load.
	ErrNoBuffer = errors.New("pararray: no buffer created")

	// ErrClosed is returned by operations invoked after Close.
	ErrClosed = errors.New("pararray: engine closed")
)
