// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Task is one unit of queued work.
type Task func(ctx context.Context) error

// Queue runs tasks one at a time, in submission order, on a single worker.
// Transports submit from their event goroutines without waiting.
type Queue struct {
	tasks  chan Task
	logger *zap.Logger
}

// NewQueue returns a Queue buffering up to size tasks.
func NewQueue(size int, logger *zap.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{tasks: make(chan Task, size), logger: logger}
}

// Submit enqueues t and reports whether it was accepted. It never blocks; a
// full queue drops t.
func (q *Queue) Submit(t Task) bool {
	select {
	case q.tasks <- t:
		return true
	default:
		q.logger.Warn("queue full, dropping task", zap.Int("size", cap(q.tasks)))
		return false
	}
}

// Run executes tasks until ctx is done. Tasks run under a context that
// ctx's cancellation does not reach, so shutdown stops dequeuing but lets the
// running task finish. A panicking or failing task is logged and does not
// stop the worker.
func (q *Queue) Run(ctx context.Context) {
	taskCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case t := <-q.tasks:
			if err := q.run(taskCtx, t); err != nil {
				q.logger.Warn("task failed", zap.Error(err))
			}
		}
	}
}

func (q *Queue) run(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t(ctx)
}
