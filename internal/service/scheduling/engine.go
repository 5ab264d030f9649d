// Package scheduling owns the stateful side of the SRS engine. Engine is the
// only component that mutates SRS records: it reads and writes them through a
// store.RecordStore, computes transitions with srs.Service, and announces every
// successful mutation on an events.EventEmitter.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/events"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// Status is the derived view of one item's schedule.
type Status struct {
	Phase  domain.Phase     `json:"phase"`
	Record domain.SRSRecord `json:"record"`
	IsDue  bool             `json:"is_due"`
}

// Engine applies review outcomes to SRS records. It is safe for concurrent use;
// per-record atomicity comes from the RecordStore.
type Engine struct {
	records *store.RecordStore
	srs     srs.Service
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewEngine creates an Engine. A nil emitter disables notifications.
func NewEngine(
	records *store.RecordStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Engine {
	if records == nil {
		panic("records cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		records: records,
		srs:     srsService,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "scheduling_engine")),
	}
}

// Params returns the scheduling parameters in use.
func (e *Engine) Params() srs.Params {
	return e.srs.Params()
}

// Record returns the record for id. Unknown IDs yield a default record; it is
// only written once a mutation touches it.
func (e *Engine) Record(id string) domain.SRSRecord {
	rec, _ := e.records.Get(id)
	return rec
}

// IsDue reports whether id is due for review at now.
func (e *Engine) IsDue(id string, now time.Time) bool {
	return e.srs.IsDue(e.Record(id), now)
}

// Status returns the phase, record and due flag of id.
func (e *Engine) Status(id string, now time.Time) Status {
	rec := e.Record(id)
	return Status{
		Phase:  e.srs.Classify(rec),
		Record: rec,
		IsDue:  e.srs.IsDue(rec, now),
	}
}

// Apply records a review outcome for id at now and returns the new record.
func (e *Engine) Apply(
	ctx context.Context,
	id string,
	outcome domain.ReviewOutcome,
	now time.Time,
) (domain.SRSRecord, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if !outcome.IsValid() {
		log.Warn("invalid review outcome",
			slog.String("item_id", id),
			slog.String("outcome", string(outcome)))
		return domain.SRSRecord{}, srs.ErrInvalidOutcome
	}

	var previous domain.SRSRecord
	next, err := e.records.Update(ctx, id, func(current domain.SRSRecord) (domain.SRSRecord, error) {
		previous = current
		return e.srs.ApplyOutcome(current, outcome, now)
	})
	if err != nil {
		log.Error("failed to apply review outcome",
			slog.String("error", err.Error()),
			slog.String("item_id", id),
			slog.String("outcome", string(outcome)))
		return domain.SRSRecord{}, fmt.Errorf("failed to apply outcome to %q: %w", id, err)
	}

	log.Debug("review outcome applied",
		slog.String("item_id", id),
		slog.String("outcome", string(outcome)),
		slog.Int("bucket", next.Bucket),
		slog.Float64("ease", next.Ease),
		slog.Int("lapses", next.Lapses))

	event := events.NewRecordUpdatedEvent(events.KindReviewed, id, previous, next, now)
	event.Outcome = outcome
	e.emit(ctx, event)
	return next, nil
}

// MarkCorrect is shorthand for Apply with ok when correct and ng otherwise.
func (e *Engine) MarkCorrect(ctx context.Context, id string, correct bool, now time.Time) (domain.SRSRecord, error) {
	outcome := domain.ReviewOutcomeNG
	if correct {
		outcome = domain.ReviewOutcomeOK
	}
	return e.Apply(ctx, id, outcome, now)
}

// Override replaces the record of id with rec, clamped into range.
func (e *Engine) Override(ctx context.Context, id string, rec domain.SRSRecord) (domain.SRSRecord, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	var previous domain.SRSRecord
	next, err := e.records.Update(ctx, id, func(current domain.SRSRecord) (domain.SRSRecord, error) {
		previous = current
		return rec, nil
	})
	if err != nil {
		log.Error("failed to override record",
			slog.String("error", err.Error()),
			slog.String("item_id", id))
		return domain.SRSRecord{}, fmt.Errorf("failed to override %q: %w", id, err)
	}

	log.Debug("record overridden", slog.String("item_id", id), slog.Int("bucket", next.Bucket))
	e.emit(ctx, events.NewRecordUpdatedEvent(events.KindOverridden, id, previous, next, time.Now().UTC()))
	return next, nil
}

// Reset discards every record.
func (e *Engine) Reset(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	count := e.records.Len()
	if err := e.records.Reset(ctx); err != nil {
		log.Error("failed to reset records", slog.String("error", err.Error()))
		return fmt.Errorf("failed to reset records: %w", err)
	}

	log.Info("srs records reset", slog.Int("count", count))
	e.emit(ctx, events.NewRecordUpdatedEvent(
		events.KindReset, "", domain.SRSRecord{}, domain.NewSRSRecord(), time.Now().UTC()))
	return nil
}

// Snapshot returns a copy of every stored record.
func (e *Engine) Snapshot() map[string]domain.SRSRecord {
	return e.records.Snapshot()
}

// emit publishes event. Handler failures are logged and never returned, since
// the mutation has already been persisted.
func (e *Engine) emit(ctx context.Context, event *events.RecordUpdatedEvent) {
	if e.emitter == nil {
		return
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, e.logger).Warn("event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("kind", string(event.Kind)))
	}
}

// DueItems filters items down to those due at now, preserving order.
func DueItems[T domain.Identifiable](e *Engine, items []T, now time.Time) []T {
	return srs.DueItems(e.srs, items, e.Record, now)
}

// WrongIDs returns the IDs of items whose last outcome was a failure and that
// have left the new phase, in input order.
func WrongIDs[T domain.Identifiable](e *Engine, items []T) []string {
	var ids []string
	for _, item := range items {
		rec := e.Record(item.StableID())
		if rec.LastWrong && rec.Bucket > 0 {
			ids = append(ids, item.StableID())
		}
	}
	return ids
}
