package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 64
	channelBuffer  = 256
)

var ErrPoolClosed = errors.New("worker pool closed")

// DepthGauge observes the number of jobs waiting for a worker.
type DepthGauge interface {
	Set(float64)
}

// Pool runs submitted jobs on a fixed set of workers sharing one queue. It
// caps how many deliveries run at the same time across all dispatches.
type Pool struct {
	jobs    chan func()
	workers int
	depth   DepthGauge
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a Pool with numWorkers workers and a queue of queueSize jobs.
// Non-positive values fall back to defaults. depth may be nil.
func NewPool(numWorkers, queueSize int, depth DepthGauge, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = channelBuffer
	}
	return &Pool{
		jobs:    make(chan func(), queueSize),
		workers: numWorkers,
		depth:   depth,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	p.log.Info().Int("workers", p.workers).Int("queue_size", cap(p.jobs)).Msg("delivery pool started")
}

// Submit enqueues fn, blocking while the queue is full until ctx is done.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- fn:
		p.observeDepth()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new jobs, lets the workers finish everything already queued
// and waits for them to exit or ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("delivery pool drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.observeDepth()
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("delivery job panicked")
		}
	}()
	job()
}

func (p *Pool) observeDepth() {
	if p.depth != nil {
		p.depth.Set(float64(len(p.jobs)))
	}
}
