package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts the events it receives.
type recordingHandler struct {
	HandledCount int
	LastEvent    *RecordUpdatedEvent
	HandlerError error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *RecordUpdatedEvent) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func newEvent() *RecordUpdatedEvent {
	rec := domain.NewSRSRecord()
	next := rec
	next.Bucket = 1
	ev := NewRecordUpdatedEvent(KindReviewed, "w1", rec, next, time.Now())
	ev.Outcome = domain.ReviewOutcomeOK
	return ev
}

func TestNewRecordUpdatedEvent(t *testing.T) {
	t.Parallel()

	a := newEvent()
	b := newEvent()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, KindReviewed, a.Kind)
	assert.Equal(t, "w1", a.ItemID)
	assert.Equal(t, 0, a.Previous.Bucket)
	assert.Equal(t, 1, a.Record.Bucket)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent()))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &recordingHandler{}
		handler2 := &recordingHandler{}
		emitter.Subscribe(handler1)
		emitter.Subscribe(handler2)

		event := newEvent()
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{HandlerError: errors.New("handler error")}
		success := &recordingHandler{}
		emitter.Subscribe(failing)
		emitter.Subscribe(success)

		err := emitter.EmitEvent(context.Background(), newEvent())

		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failing.HandledCount)
		assert.Equal(t, 1, success.HandledCount)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		kept := &recordingHandler{}
		removed := &recordingHandler{}
		emitter.Subscribe(kept)
		id := emitter.Subscribe(removed)

		assert.True(t, emitter.Unsubscribe(id))
		assert.False(t, emitter.Unsubscribe(id))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent()))
		assert.Equal(t, 1, kept.HandledCount)
		assert.Equal(t, 0, removed.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		var got string
		emitter.Subscribe(HandlerFunc(func(_ context.Context, ev *RecordUpdatedEvent) error {
			got = ev.ItemID
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent()))
		assert.Equal(t, "w1", got)
	})
}
