// Package parallel provides the fixed-size worker pool the CLI uses to fan
// conversion jobs out across files.
package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
)

// Pool runs submitted funcs on a fixed number of goroutines. The pipeline
// itself is pure, so jobs need no coordination beyond Wait.
type Pool struct {
	workers sync.WaitGroup
	jobs    sync.WaitGroup
	work    chan func()
	stop    sync.Once
}

// Start launches numWorkers goroutines; numWorkers < 1 means GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{work: make(chan func(), numWorkers)}
	for range numWorkers {
		p.workers.Go(func() {
			for f := range p.work {
				f()
				p.jobs.Done()
			}
		})
	}
	return p
}

// Do submits f, blocking if all workers are busy and the queue is full.
func (p *Pool) Do(f func()) {
	p.jobs.Add(1)
	p.work <- f
}

// Wait blocks until all submitted work has finished. done closes the pool
// first; once done, no further Do calls are allowed.
func (p *Pool) Wait(done bool) {
	if done {
		p.Close()
		p.workers.Wait()
		return
	}
	p.jobs.Wait()
}

// Close stops accepting work. Safe to call more than once.
func (p *Pool) Close() {
	p.stop.Do(func() { close(p.work) })
}
