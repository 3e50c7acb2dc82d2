// Package worker fans indexed jobs out to a bounded set of goroutines.
package worker

import (
	"context"
	"sync"
)

// Func processes job i.
type Func func(ctx context.Context, i int) error

// Pool bounds how many jobs of a single Run execute at once. A Pool is safe
// for concurrent use; every Run gets its own queue.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers reports the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn for every index in [0, n) and waits for all started jobs.
// The first error cancels the context handed to the remaining jobs and
// stops the queue; it is the error returned.
func (p *Pool) Run(ctx context.Context, n int, fn Func) error {
	if n <= 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	jobs := make(chan int)

	for w := 0; w < min(p.workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				if err := fn(runCtx, i); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
