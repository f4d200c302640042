// Package outbox runs fire-and-forget side effects (welcome grants, peer
// pushes) off the request path. Tasks are retried with exponential backoff
// and their failures are logged, never returned to the caller that queued them.
package outbox

import (
	"context"
	"sync"
	"time"

	"gnsnode/config"
	"gnsnode/pkg/logger"
)

type TaskFunc = func(ctx context.Context) error

type task struct {
	name    string
	run     TaskFunc
	attempt int
}

type Queue struct {
	tasks       chan task
	workers     int
	maxAttempts int
	baseBackoff time.Duration
	logger      logger.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewQueue(cfg config.Outbox, logger logger.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	return &Queue{
		tasks:       make(chan task, cfg.QueueSize),
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		logger:      logger.With("component", "outbox"),
	}
}

// Start launches the workers. They exit when ctx is done or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

// Enqueue schedules fn. It never blocks; false means the queue is full or
// stopped and the task was dropped.
func (q *Queue) Enqueue(name string, fn TaskFunc) bool {
	return q.push(task{name: name, run: fn, attempt: 1})
}

func (q *Queue) push(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		q.logger.Warn("task dropped, outbox stopped", "task", t.name)
		return false
	}
	select {
	case q.tasks <- t:
		return true
	default:
		q.logger.Warn("task dropped, outbox full", "task", t.name)
		return false
	}
}

// Stop stops accepting tasks, drains what is already queued and waits for
// the workers. Pending retries are abandoned.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			q.run(ctx, t)
		}
	}
}

func (q *Queue) run(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", "task", t.name, "panic", r)
		}
	}()

	err := t.run(ctx)
	if err == nil {
		q.logger.Debug("task done", "task", t.name, "attempt", t.attempt)
		return
	}
	if t.attempt >= q.maxAttempts {
		q.logger.Error("task failed, giving up", "task", t.name, "attempt", t.attempt, "err", err)
		return
	}
	delay := q.backoff(t.attempt)
	q.logger.Warn("task failed, retrying", "task", t.name, "attempt", t.attempt, "retry_in", delay, "err", err)

	t.attempt++
	time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		q.push(t)
	})
}

func (q *Queue) backoff(attempt int) time.Duration {
	d := q.baseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
