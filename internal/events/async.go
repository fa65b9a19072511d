package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when an event is dropped because the queue is full.
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event publisher closed")

const asyncPublishTimeout = 5 * time.Second

// Async hands events to a single background worker through a bounded queue,
// so a slow broker never delays the caller. Events that do not fit are dropped.
type Async struct {
	next   Publisher
	queue  chan ResolutionEvent
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts the worker. size <= 0 means a queue of one.
func NewAsync(next Publisher, size int, logger *zap.Logger) *Async {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Async{
		next:   next,
		queue:  make(chan ResolutionEvent, size),
		logger: logger,
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish enqueues ev without blocking.
func (a *Async) Publish(_ context.Context, ev ResolutionEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		if err := a.next.Publish(ctx, ev); err != nil {
			a.logger.Warn("failed to publish resolution event",
				zap.String("event_id", ev.EventID),
				zap.String("hostname", ev.Hostname),
				zap.Error(err),
			)
		}
		cancel()
	}
}
