package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// RecordsKey is the key under which the whole record map is persisted.
const RecordsKey = "srs.records.v1"

// UpdateFn computes the next record from the current one.
// Returning an error aborts the update and leaves the store unchanged.
type UpdateFn func(current domain.SRSRecord) (domain.SRSRecord, error)

// RecordStore holds every SRS record in memory and mirrors the full map to a
// KVStore after each mutation. All methods are safe for concurrent use; each
// mutation is a single read-modify-write under one lock.
type RecordStore struct {
	mu      sync.Mutex
	kv      KVStore
	logger  *slog.Logger
	records map[string]domain.SRSRecord
}

// NewRecordStore loads the persisted record map from kv.
// A missing or undecodable map yields an empty store; only a failing kv read is an error.
func NewRecordStore(ctx context.Context, kv KVStore, logger *slog.Logger) (*RecordStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &RecordStore{
		kv:      kv,
		logger:  logger.With(slog.String("component", "srs_record_store")),
		records: make(map[string]domain.SRSRecord),
	}

	loaded := make(map[string]domain.SRSRecord)
	found, err := LoadJSON(ctx, kv, RecordsKey, &loaded)
	switch {
	case errors.Is(err, ErrCorrupt):
		s.logger.WarnContext(ctx, "discarding corrupt srs records",
			slog.String("key", RecordsKey),
			slog.String("error", err.Error()))
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to load srs records",
			slog.String("error", err.Error()))
		return nil, err
	case found:
		for id, rec := range loaded {
			s.records[id] = rec.Clamped()
		}
		s.logger.DebugContext(ctx, "loaded srs records", slog.Int("count", len(s.records)))
	}

	return s, nil
}

// Get returns the stored record for id, or a fresh default record and false.
func (s *RecordStore) Get(id string) (domain.SRSRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return domain.NewSRSRecord(), false
	}
	return rec.Clamped(), true
}

// Update atomically replaces the record for id with fn(current).
// A missing record is passed to fn as the default record. The result is
// clamped before it is stored. If persisting fails the previous state is
// restored and the error is returned.
func (s *RecordStore) Update(ctx context.Context, id string, fn UpdateFn) (domain.SRSRecord, error) {
	if strings.TrimSpace(id) == "" {
		return domain.SRSRecord{}, NewStoreError("srs_records", "update", "empty item id", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[id]
	current := domain.NewSRSRecord()
	if existed {
		current = prev.Clamped()
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}
	next = next.Clamped()

	s.records[id] = next
	if err := SaveJSON(ctx, s.kv, RecordsKey, s.records); err != nil {
		if existed {
			s.records[id] = prev
		} else {
			delete(s.records, id)
		}
		s.logger.ErrorContext(ctx, "failed to persist srs record, rolled back",
			slog.String("item_id", id),
			slog.String("error", err.Error()))
		return current, err
	}

	return next.Clamped(), nil
}

// Reset removes every record, in memory and in storage.
func (s *RecordStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, RecordsKey); err != nil {
		s.logger.ErrorContext(ctx, "failed to reset srs records",
			slog.String("error", err.Error()))
		return NewStoreError("srs_records", "reset", "deleting records", errors.Join(ErrDeleteFailed, err))
	}

	count := len(s.records)
	s.records = make(map[string]domain.SRSRecord)
	s.logger.DebugContext(ctx, "reset srs records", slog.Int("removed", count))
	return nil
}

// Snapshot returns a copy of every stored record keyed by item ID.
func (s *RecordStore) Snapshot() map[string]domain.SRSRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.SRSRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.Clamped()
	}
	return out
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
