package meshing

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPoolClosed = errors.New("meshing: worker pool closed")
	ErrQueueFull  = errors.New("meshing: job queue full")
)

// Job is one chunk build. Run executes on a worker goroutine; the result is
// delivered on Result, which should be buffered so workers never block.
type Job struct {
	Key        [3]int
	Generation uint64
	Run        func() (*Mesh, error)
	Result     chan Result
}

// Result carries a finished build back to the submitter.
type Result struct {
	Key        [3]int
	Generation uint64
	Mesh       *Mesh
	Err        error
}

// WorkerPool runs mesh builds on a fixed set of goroutines. Jobs already
// queued always run to completion, even during Shutdown.
type WorkerPool struct {
	jobQueue chan Job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize.
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan Job, max(queueSize, 0)),
		workers:  max(workers, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range pool.workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// Submit queues a job without blocking. It fails when the queue is full or
// the pool is shut down.
func (p *WorkerPool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitBlocking waits for queue space, ctx cancellation or shutdown.
func (p *WorkerPool) SubmitBlocking(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobQueue {
		res := run(job)
		if job.Result != nil {
			job.Result <- res
		}
	}
}

func run(job Job) (res Result) {
	res = Result{Key: job.Key, Generation: job.Generation}
	defer func() {
		if r := recover(); r != nil {
			res.Mesh = nil
			res.Err = fmt.Errorf("build %v panicked: %v", job.Key, r)
		}
	}()
	if job.Run == nil {
		res.Err = errors.New("build has no work")
		return res
	}
	res.Mesh, res.Err = job.Run()
	return res
}

// Shutdown stops accepting jobs, lets queued ones finish and waits for the
// workers to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLength returns the number of jobs waiting for a worker.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
