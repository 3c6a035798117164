// Package memory implements an in-process events.Bus over a lock-guarded
// map of topic to handlers, fanning each published event out to every
// handler subscribed on its topic at publish time.
package memory

import (
	"context"
	"sync"

	"github.com/azsbx/extended-client/pkg/events"
	"github.com/azsbx/extended-client/pkg/logger"
)

// Bus implements events.Bus. Handlers run synchronously on the
// publishing goroutine, in subscription order; a handler error is
// logged and does not block delivery to the remaining handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]events.Handler
	closed   bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[string][]events.Handler)}
}

// Publish implements events.Bus.
func (b *Bus) Publish(ctx context.Context, topic string, event events.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, h := range b.handlers[topic] {
		if err := h(ctx, event); err != nil {
			logger.L().ErrorContext(ctx, "event handler failed", "topic", topic, "event_type", event.Type, "error", err)
		}
	}
	return nil
}

// Subscribe implements events.Bus.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler events.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

// Close implements events.Bus. Idempotent; after Close, Publish is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
