package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// Named is implemented by jobs that want a readable name in logs
type Named interface {
	Name() string
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) error

func (f JobFunc) Process(ctx context.Context) error { return f(ctx) }

// Pool represents a worker pool
type Pool struct {
	workers    int
	jobQueue   chan Job
	jobTimeout time.Duration
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

// NewPool creates a new worker pool. Every job runs with DefaultJobTimeout.
func NewPool(workers int, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, queueSize),
		jobTimeout: DefaultJobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// WithJobTimeout overrides the per-job timeout; zero disables it
func (p *Pool) WithJobTimeout(d time.Duration) *Pool {
	p.jobTimeout = d
	return p
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.run(job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) run(job Job) {
	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error(LogMsgWorkerJobPanicked, "job", jobName(job), "panic", r)
		}
	}()
	if err := job.Process(ctx); err != nil {
		// Log error but don't crash worker
		logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "job", jobName(job), "error", err)
	}
}

func jobName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", job)
}

// Enqueue adds a job to the queue, blocking while the queue is full.
// Jobs enqueued after Stop are dropped.
func (p *Pool) Enqueue(job Job) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

// TryEnqueue adds a job without blocking and reports whether it was queued
func (p *Pool) TryEnqueue(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop cancels in-flight jobs and waits for the workers to exit
func (p *Pool) Stop() {
	p.stopOnce.Do(p.cancel)
	p.wg.Wait()
}
