package parallel

import (
	"runtime"
	"sync"

	"github.com/exascience/pararray/internal"
)

/*
A Scheduler is a fixed set of worker goroutines that execute forked
tasks of the recursive functions in this package.

A fork hands its second thunk to an idle worker if there is one, and
otherwise executes it in the forking goroutine. Submission therefore
never blocks, and nested forks cannot deadlock regardless of the number
of workers.

A Scheduler is created once, can be shared by any number of concurrent
callers, and must be shut down with Close. A nil *Scheduler is valid and
starts a fresh goroutine for every fork.
*/
type Scheduler struct {
	tasks  chan func()
	size   int
	mu     sync.RWMutex // guards closed and sends on tasks
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler starts a Scheduler with n workers. If n is <= 0,
// runtime.GOMAXPROCS(0) is used instead.
func NewScheduler(n int) *Scheduler {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s := &Scheduler{
		tasks: make(chan func()),
		size:  n,
	}
	s.wg.Add(n)
	for i := 0; i < n; i++ {
		go s.work()
	}
	return s
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	for task := range s.tasks {
		task()
	}
}

// Size returns the number of workers, or 0 for a nil Scheduler.
func (s *Scheduler) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Close stops all workers after they have finished their current task.
// Forks issued after Close are executed in the forking goroutine. Close is
// idempotent.
func (s *Scheduler) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()
	s.wg.Wait()
}

// spawn hands task to an idle worker and reports whether one accepted it.
func (s *Scheduler) spawn(task func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.tasks <- task:
		return true
	default:
		return false
	}
}

// Fork executes f0 and f1, potentially in parallel, and returns only when
// both have terminated.
//
// If f1 panics on a worker, the panic is recovered and Fork eventually
// panics with the recovered value, including the stack trace of its
// origin.
func (s *Scheduler) Fork(f0, f1 func()) {
	if s == nil {
		Do(f0, f1)
		return
	}
	var p interface{}
	var wg sync.WaitGroup
	wg.Add(1)
	forked := s.spawn(func() {
		defer func() {
			p = recover()
			wg.Done()
		}()
		f1()
	})
	f0()
	if !forked {
		wg.Done()
		f1()
		return
	}
	wg.Wait()
	if p != nil {
		panic(internal.WrapPanic(p))
	}
}
