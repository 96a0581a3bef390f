// Package scheduler runs repeating background tasks with an explicit
// start/stop lifecycle, so maintenance loops (gift expiry sweep,
// settings poll) are torn down with the server instead of leaking.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TaskFunc is one tick of a repeating task. Errors are logged, not
// fatal; the task keeps running until stopped.
type TaskFunc func(ctx context.Context) error

// Task is a named repeating task driven by a ticker.
type Task struct {
	name     string
	interval time.Duration
	fn       TaskFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a task that runs fn every interval once started.
func NewTask(name string, interval time.Duration, fn TaskFunc) *Task {
	return &Task{name: name, interval: interval, fn: fn}
}

// Start launches the task loop. Calling Start on a running task is a
// no-op.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx)
	log.Info().Str("task", t.name).Dur("interval", t.interval).Msg("scheduled task started")
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.fn(ctx); err != nil {
				log.Error().Err(err).Str("task", t.name).Msg("scheduled task tick failed")
			}
		}
	}
}

// Stop cancels the task loop and waits for the in-flight tick to
// finish. Calling Stop on a stopped task is a no-op.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Str("task", t.name).Msg("scheduled task stopped")
}
