// Package parallel runs independent jobs on a fixed number of workers.
package parallel

import (
	"errors"
	"runtime"
	"sync"
)

type Pool struct {
	wg    sync.WaitGroup
	work  chan func()
	close func()

	mu   sync.Mutex
	errs []error
}

// Start returns a pool of numWorkers workers. A pool of one worker runs
// every job inline in the caller's goroutine. numWorkers below one means
// one worker per CPU.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		close: func() {},
	}

	if numWorkers > 1 {
		pool.work = make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range pool.work {
					f()
				}
			})
		}

		pool.close = sync.OnceFunc(func() { close(pool.work) })
	}

	return pool
}

// Go schedules job. Its error, if any, is reported by Wait.
func (p *Pool) Go(job func() error) {
	f := func() {
		if err := job(); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}

	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting jobs, waits for the scheduled ones and returns their
// errors joined together.
func (p *Pool) Wait() error {
	p.close()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}
