package worker

import (
	"context"
	"errors"
	"sync"

	"taskagent/internal/application/port/input"
	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

var ErrPoolClosed = errors.New("worker pool is shut down")

// Handle lets the submitter await or poll one task's outcome.
type Handle struct {
	done   chan struct{}
	result *entity.ExecutionResult
	err    error
}

// Wait blocks until the task finishes or the context is canceled. The
// worker keeps running on context cancellation; only the wait is abandoned.
func (h *Handle) Wait(ctx context.Context) (*entity.ExecutionResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports completion without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Pool runs each submitted task on its own goroutine, bounded by a fixed
// number of concurrency slots. Tasks never share a browser session; the
// task record store is the only state shared across workers.
type Pool struct {
	runner input.TaskRunner
	logger output.LoggerPort
	slots  chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(runner input.TaskRunner, logger output.LoggerPort, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		runner: runner,
		logger: logger,
		slots:  make(chan struct{}, workers),
	}
}

// Submit queues a task and returns a handle to await it. The task waits
// for a free slot before its loop starts.
func (p *Pool) Submit(inv entity.TaskInvocation) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	h := &Handle{done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.slots <- struct{}{}
		defer func() { <-p.slots }()

		h.result, h.err = p.runner.Run(context.Background(), inv)
		if h.err != nil {
			p.logger.Warn("task rejected", "task_id", inv.TaskID, "error", h.err)
		}
		close(h.done)
	}()
	return h, nil
}

// Shutdown stops accepting work and waits for in-flight tasks.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
