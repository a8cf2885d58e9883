package internal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
)

// ChunkSize is the number of elements a worker processes between two
// checks for cancellation.
const ChunkSize = 1 << 12

// Chunks invokes f for consecutive subranges of at most ChunkSize elements,
// covering the half-open interval from low to high. Before each chunk, the
// context is polled, and Chunks returns ctx.Err() as soon as it is
// different from nil. An empty range results in no invocation of f.
func Chunks(ctx context.Context, low, high int, f func(low, high int)) error {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	for low < high {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := low + ChunkSize
		if next > high {
			next = high
		}
		f(low, next)
		low = next
	}
	return nil
}

// SplitMix derives a well-mixed 64-bit value from a seed and a stream
// index, so that tasks seeded with different indices produce independent
// pseudo-random sequences.
func SplitMix(seed, index uint64) uint64 {
	z := seed + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

type runtimeError struct{ error }

func (runtimeError) RuntimeError() {}

// WrapPanic adds stack trace information to a recovered panic, so that a
// panic raised in a worker goroutine can be rethrown in the goroutine that
// waits for it without losing its origin.
func WrapPanic(p interface{}) interface{} {
	if p != nil {
		s := fmt.Sprintf("%v\n%s\nrethrown at", p, debug.Stack())
		if _, isError := p.(error); isError {
			r := errors.New(s)
			if _, isRuntimeError := p.(runtime.Error); isRuntimeError {
				return runtimeError{r}
			}
			return r
		}
		return s
	}
	return nil
}
