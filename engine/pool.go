package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs mesh evaluation jobs on a fixed set of goroutines.
// ExecuteAll only returns once every submitted job has finished, which is
// the frame barrier the tick relies on before presenting.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	jobs    chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers. Zero or
// negative means GOMAXPROCS. Workers begin waiting for jobs immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain queued jobs so ExecuteAll barriers can release.
			p.drain()
			return
		case job := <-p.jobs:
			if job != nil {
				job()
			}
		}
	}
}

func (p *WorkerPool) drain() {
	for {
		select {
		case job := <-p.jobs:
			if job != nil {
				job()
			}
		default:
			return
		}
	}
}

// ExecuteAll submits every job and blocks until all of them have run. On a
// closed pool it returns immediately without running anything.
func (p *WorkerPool) ExecuteAll(jobs []func()) {
	if len(jobs) == 0 || !p.running.Load() {
		return
	}

	var barrier sync.WaitGroup
	barrier.Add(len(jobs))

	for _, job := range jobs {
		job := job
		wrapped := func() {
			defer barrier.Done()
			job()
		}
		select {
		case p.jobs <- wrapped:
		case <-p.done:
			// Pool is closing; run inline so the barrier still releases.
			wrapped()
		}
	}

	barrier.Wait()
}

// Close stops the workers. It is safe to call more than once; only the
// first call does anything.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the pool size.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
