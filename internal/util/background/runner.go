package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"untitledone/internal/util/logger"
)

// TaskRunner accepts non-critical work that must never block or fail the caller.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Runner executes submitted tasks on a fixed worker pool. Every task gets its
// own timeout, errors and panics are logged, and a full queue drops the task.
type Runner struct {
	tasks   chan task
	workers int
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewRunner(workers int, queueSize int, timeout time.Duration) *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		tasks:   make(chan task, queueSize),
		workers: max(1, workers),
		timeout: timeout,
		logger:  logger.GetLogger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (r *Runner) Start() {
	r.wg.Add(r.workers)
	for range r.workers {
		go r.worker()
	}

	r.logger.Info("Background task runner started",
		slog.Int("workers", r.workers),
		slog.Duration("taskTimeout", r.timeout))
}

// Submit queues fn without blocking. It returns false when the task was dropped.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("Background task dropped, runner is stopped", slog.String("task", name))
		return false
	}

	select {
	case r.tasks <- task{name: name, fn: fn}:
		return true
	default:
		r.logger.Warn("Background task dropped, queue is full", slog.String("task", name))
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones until ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.tasks)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return fmt.Errorf("background tasks did not finish: %w", ctx.Err())
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for t := range r.tasks {
		r.execute(t)
	}
}

func (r *Runner) execute(t task) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("Background task panicked",
				slog.String("task", t.name),
				slog.Any("panic", recovered))
		}
	}()

	if err := t.fn(ctx); err != nil {
		r.logger.Error("Background task failed",
			slog.String("task", t.name),
			slog.String("error", err.Error()))
	}
}
