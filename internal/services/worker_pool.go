package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/Rasch/internal/metrics"
)

var (
	ErrQueueFull   = errors.New("analysis queue is full")
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Task is one unit of background work.
type Task struct {
	ID  string
	Run func(ctx context.Context) error
}

type WorkerPoolConfig struct {
	// WorkerCount defaults to 1 when not positive.
	WorkerCount int
	// QueueSize defaults to 64 when not positive.
	QueueSize int
}

// WorkerPool runs tasks on a fixed set of goroutines fed by a buffered
// queue. Estimation itself stays synchronous inside a worker.
type WorkerPool struct {
	queue   chan Task
	workers int
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc

	errorHandler func(task Task, err error)
}

func NewWorkerPool(cfg WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		queue:   make(chan Task, size),
		workers: workers,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetErrorHandler is called for every task returning an error. If nil,
// errors are only logged.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorHandler = handler
}

// Start launches the workers. Calling it twice is a no-op.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	g, ctx := errgroup.WithContext(p.ctx)
	p.group = g
	for i := 0; i < p.workers; i++ {
		id := i
		g.Go(func() error {
			p.work(ctx, id)
			return nil
		})
	}
	p.logger.Info("worker pool started", "workers", p.workers, "queue_size", cap(p.queue))
}

// Submit enqueues a task without blocking.
func (p *WorkerPool) Submit(t Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.queue <- t:
		metrics.QueueDepthInc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop stops accepting tasks, lets workers drain the queue and waits for
// them to exit.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	g := p.group
	p.mu.Unlock()

	if g != nil {
		_ = g.Wait()
	}
	p.cancel()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) work(ctx context.Context, id int) {
	for t := range p.queue {
		metrics.QueueDepthDec()
		if err := t.Run(ctx); err != nil {
			p.logger.Error("task execution failed", "worker", id, "task_id", t.ID, "error", err)
			p.mu.Lock()
			handler := p.errorHandler
			p.mu.Unlock()
			if handler != nil {
				handler(t, err)
			}
		}
	}
}
