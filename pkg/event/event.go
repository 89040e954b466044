// Package event is a small in-process event dispatcher. Listeners run
// synchronously with Fire or on a bounded worker pool with FireAsync.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Dispatcher routes named events to their listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewDispatcher creates a Dispatcher whose async listeners share workers
// goroutines.
func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{
		handlers: map[string][]Handler{},
		pool:     workerpool.New("events", workers),
	}
}

// Listen registers h for event.
func (d *Dispatcher) Listen(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

func (d *Dispatcher) listeners(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[event]...)
}

// Fire runs every listener for event in registration order.
func (d *Dispatcher) Fire(ctx context.Context, event string, payload any) {
	for _, h := range d.listeners(event) {
		h(ctx, payload)
	}
}

// FireAsync queues every listener for event and returns immediately. The
// listeners get a context detached from ctx's cancellation, since the
// request that fired the event is usually finished by the time they run.
// Events are dropped, with a warning, when the pool is saturated.
func (d *Dispatcher) FireAsync(ctx context.Context, event string, payload any) {
	bg := context.WithoutCancel(ctx)
	for _, h := range d.listeners(event) {
		h := h
		if err := d.pool.Submit(func() { h(bg, payload) }); err != nil {
			reason := "pool full"
			if errors.Is(err, workerpool.ErrPoolClosed) {
				reason = "dispatcher closed"
			}
			logger.WithCtx(ctx).Warn("event: listener not scheduled", "event", event, "reason", reason)
		}
	}
}

// Close waits for queued listeners to finish.
func (d *Dispatcher) Close() {
	d.pool.Shutdown()
}
