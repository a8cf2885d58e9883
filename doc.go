// Package pararray generates and reduces large arrays of 32-bit integers in
// parallel, contrasting two strategies.
//
// The executors strategy divides the array into a fixed number of
// contiguous batches, one per worker, and waits for all workers at a
// single barrier. The fork-join strategy recursively bisects the array
// until pieces are at or below a threshold, and processes each piece
// directly; every split waits only for its own two halves.
//
// An Engine owns one Buffer per run. A run is created (Create or Load),
// populated with pseudo-random values, and reduced to its minimum, maximum,
// and total, from which the mean is derived:
//
//	e := pararray.NewEngine()
//	defer e.Close()
//	if err := e.Create(1_000_000); err != nil { ... }
//	if err := e.PopulateWithForkJoin(ctx); err != nil { ... }
//	if err := e.ComputeWithForkJoin(ctx); err != nil { ... }
//	mean, err := e.Mean()
//
// The generic machinery lives in the subpackages:
//
// pararray/parallel provides the partitioning and fork-join executors over
// ranges of indices, and the Scheduler that fork-join tasks run on.
//
// pararray/sequential provides sequential counterparts of the fork-join
// functions, for testing, debugging, and as a baseline.
package pararray

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'pararray'
func tracer() tracing.Trace {
	return tracing.Select("pararray")
}
