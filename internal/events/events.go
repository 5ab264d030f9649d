package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

// Kind says which engine operation produced an event.
type Kind string

// Event kinds
const (
	KindReviewed   Kind = "reviewed"
	KindOverridden Kind = "overridden"
	KindReset      Kind = "reset"
)

// RecordUpdatedEvent describes one mutation of the SRS record store.
// For KindReset, ItemID is empty and Record holds the default record.
type RecordUpdatedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Kind   Kind   `json:"kind"`
	ItemID string `json:"item_id,omitempty"`

	// Outcome is set only for KindReviewed
	Outcome domain.ReviewOutcome `json:"outcome,omitempty"`

	Previous domain.SRSRecord `json:"previous"`
	Record   domain.SRSRecord `json:"record"`

	// OccurredAt is the timestamp when the mutation was applied
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRecordUpdatedEvent creates an event with a fresh ID.
func NewRecordUpdatedEvent(kind Kind, itemID string, previous, record domain.SRSRecord, at time.Time) *RecordUpdatedEvent {
	return &RecordUpdatedEvent{
		ID:         uuid.New(),
		Kind:       kind,
		ItemID:     itemID,
		Previous:   previous,
		Record:     record,
		OccurredAt: at,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *RecordUpdatedEvent) error
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *RecordUpdatedEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *RecordUpdatedEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the engine to publish changes without direct knowledge of observers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all subscribed handlers.
	EmitEvent(ctx context.Context, event *RecordUpdatedEvent) error
}
