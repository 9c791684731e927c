package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type registry struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

func (r *registry) Subscribe(eventType EventType, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[eventType] = append(r.listeners[eventType], handler)
}

func (r *registry) handlers(eventType EventType) []EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventHandler{}, r.listeners[eventType]...)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	registry
}

// NewInMemoryDispatcher creates a dispatcher that runs handlers inline. The
// first handler error is returned after every handler has run.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{registry{listeners: make(map[EventType][]EventHandler)}}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	var first error
	for _, handler := range d.handlers(event.Type) {
		if err := handler(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AsyncDispatcher runs every handler on its own goroutine, detached from the
// publisher's cancellation, so request latency never depends on side effects.
type AsyncDispatcher struct {
	registry
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewAsyncDispatcher creates an asynchronous dispatcher.
func NewAsyncDispatcher(logger *zap.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncDispatcher{
		registry: registry{listeners: make(map[EventType][]EventHandler)},
		logger:   logger,
	}
}

// Publish never blocks on handlers and never fails.
func (d *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	detached := context.WithoutCancel(ctx)
	for _, handler := range d.handlers(event.Type) {
		d.wg.Add(1)
		go d.run(detached, handler, event)
	}
	return nil
}

func (d *AsyncDispatcher) run(ctx context.Context, handler EventHandler, event Event) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_type", string(event.Type)),
				zap.String("issue_id", event.IssueID),
				zap.Error(fmt.Errorf("%v", r)))
		}
	}()

	if err := handler(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
	}
}

// Drain waits for in-flight handlers or until ctx is done.
func (d *AsyncDispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
