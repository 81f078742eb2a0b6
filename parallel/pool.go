// Package parallel runs independent chunks of work on a fixed number of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
)

type Pool struct {
	workers int
	wg      sync.WaitGroup
	work    chan func()
	stop    func()
}

// Start launches numWorkers goroutines. Zero or negative means one per
// GOMAXPROCS; exactly one means Do runs tasks inline on the caller.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{workers: numWorkers, stop: func() {}}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.stop = sync.OnceFunc(func() { close(pool.work) })

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

// Do queues f, or runs it straight away on an inline pool.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait blocks until every queued task finished. No task may be queued
// afterwards.
func (p *Pool) Wait() {
	p.stop()
	p.wg.Wait()
}

// Range calls fn(i) for every i in [0, n) and returns once all calls are
// done. Each index is handled by exactly one task.
func Range(workers, n int, fn func(i int)) {
	pool := Start(workers)
	for i := range n {
		pool.Do(func() { fn(i) })
	}
	pool.Wait()
}
