// Package worker runs background jobs off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job func(ctx context.Context)

// Pool runs jobs on a fixed set of goroutines fed by a bounded queue. When the queue
// is full Submit runs the job on a fresh goroutine so callers never block.
type Pool struct {
	queue  chan Job
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu       sync.RWMutex
	stopped  bool
	workers  sync.WaitGroup
	overflow sync.WaitGroup
}

// NewPool starts size workers with a queue of queueSize pending jobs.
func NewPool(size, queueSize int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan Job, queueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

// Submit schedules job. It reports false once the pool has been stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.queue <- job:
	default:
		p.logger.Warn("worker queue full; running job on its own goroutine")
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.execute(job)
		}()
	}
	return true
}

// Stop refuses new jobs, drains the queue and waits for running jobs until ctx ends.
// Jobs still running when ctx ends see their context cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		p.overflow.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) run() {
	defer p.workers.Done()
	for job := range p.queue {
		p.execute(job)
	}
}

func (p *Pool) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", zap.Any("panic", r))
		}
	}()
	job(p.ctx)
}
