package detail

import "sync"

// Scheduler decides when deferred leaderboard work runs. Deferral only
// changes when a result becomes visible, never what the result is.
type Scheduler interface {
	Defer(fn func())
}

// Immediate runs deferred work inline.
type Immediate struct{}

func (Immediate) Defer(fn func()) {
	fn()
}

// Async runs deferred work on its own goroutine.
type Async struct {
	wg sync.WaitGroup
}

func (a *Async) Defer(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Wait blocks until all deferred work has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

// Queue holds deferred work until Run is called.
type Queue struct {
	mu   sync.Mutex
	jobs []func()
}

func (q *Queue) Defer(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, fn)
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Run executes the pending jobs in the order they were deferred.
func (q *Queue) Run() {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}
