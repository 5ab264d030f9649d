package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SubscriptionID identifies a subscribed handler so it can be removed later.
type SubscriptionID uuid.UUID

// String returns the canonical form of the ID.
func (id SubscriptionID) String() string {
	return uuid.UUID(id).String()
}

type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// InMemoryEventEmitter keeps an ordered list of subscribers and dispatches
// events to them synchronously, in subscription order.
type InMemoryEventEmitter struct {
	subs   []subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

// Ensure InMemoryEventEmitter implements EventEmitter interface
var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "in_memory_event_emitter"),
	}
}

// Subscribe adds a handler and returns the ID needed to unsubscribe it.
func (e *InMemoryEventEmitter) Subscribe(handler EventHandler) SubscriptionID {
	id := SubscriptionID(uuid.New())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{id: id, handler: handler})
	e.logger.Debug("subscribed event handler",
		"subscription_id", id.String(),
		"handler_count", len(e.subs))
	return id
}

// Unsubscribe removes the handler registered under id.
// It reports whether a handler was removed.
func (e *InMemoryEventEmitter) Unsubscribe(id SubscriptionID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			e.logger.Debug("unsubscribed event handler",
				"subscription_id", id.String(),
				"handler_count", len(e.subs))
			return true
		}
	}
	return false
}

// EmitEvent publishes the given event to all subscribed handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *RecordUpdatedEvent) error {
	e.mu.RLock()
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_kind", event.Kind,
		"item_id", event.ItemID,
		"handler_count", len(subs))

	var firstErr error
	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"subscription_id", s.id.String(),
				"event_id", event.ID,
				"event_kind", event.Kind)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
