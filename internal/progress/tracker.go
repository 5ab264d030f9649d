// Package progress tracks, per collection, the last viewed cursor and the set
// of items the learner has seen. It is the resume point of a trainer session.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/scry-trainer/internal/store"
)

// Key is the key under which every collection's progress is persisted.
const Key = "unit.progress.v2"

// UnitProgress is the saved state of one collection.
type UnitProgress struct {
	LastIndex int      `json:"lastIndex"`
	SeenIDs   []string `json:"seenIDs"`
}

// Seen reports whether id has been marked seen.
func (p UnitProgress) Seen(id string) bool {
	return slices.Contains(p.SeenIDs, id)
}

type unit struct {
	lastIndex int
	seen      map[string]struct{}
}

func (u unit) export() UnitProgress {
	ids := make([]string, 0, len(u.seen))
	for id := range u.seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return UnitProgress{LastIndex: u.lastIndex, SeenIDs: ids}
}

// Tracker keeps progress for every collection in memory and persists the
// whole map to a KVStore after each change. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	kv     store.KVStore
	logger *slog.Logger
	units  map[string]unit
}

// NewTracker loads saved progress from kv. Missing or corrupt data yields an empty tracker.
func NewTracker(ctx context.Context, kv store.KVStore, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		kv:     kv,
		logger: logger.With(slog.String("component", "progress_tracker")),
		units:  make(map[string]unit),
	}

	saved := map[string]UnitProgress{}
	_, err := store.LoadJSON(ctx, kv, Key, &saved)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		t.logger.WarnContext(ctx, "discarding corrupt progress", slog.String("error", err.Error()))
	case err != nil:
		return nil, err
	default:
		for collection, p := range saved {
			u := unit{lastIndex: p.LastIndex, seen: make(map[string]struct{}, len(p.SeenIDs))}
			for _, id := range p.SeenIDs {
				u.seen[id] = struct{}{}
			}
			t.units[collection] = u
		}
	}
	return t, nil
}

// get returns the unit for collection, creating an empty one. Caller holds mu.
func (t *Tracker) get(collection string) unit {
	u, ok := t.units[collection]
	if !ok {
		u = unit{seen: make(map[string]struct{})}
	}
	return u
}

// Progress returns the saved progress of collection, or the zero progress.
func (t *Tracker) Progress(collection string) UnitProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.get(collection).export()
}

// MarkSeen adds id to the seen set of collection. Marking an ID that is
// already seen changes nothing and writes nothing.
func (t *Tracker) MarkSeen(ctx context.Context, id, collection string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.get(collection)
	if _, ok := u.seen[id]; ok {
		return nil
	}
	u.seen[id] = struct{}{}
	t.units[collection] = u

	if err := t.persist(ctx); err != nil {
		delete(u.seen, id)
		return err
	}
	return nil
}

// SetLastIndex stores the cursor position of collection.
func (t *Tracker) SetLastIndex(ctx context.Context, idx int, collection string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.get(collection)
	prev := u.lastIndex
	u.lastIndex = idx
	t.units[collection] = u

	if err := t.persist(ctx); err != nil {
		u.lastIndex = prev
		t.units[collection] = u
		return err
	}
	return nil
}

// SeenCount returns how many distinct items of collection have been seen.
func (t *Tracker) SeenCount(collection string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.get(collection).seen)
}

// PercentComplete returns the seen share of a collection of total items, in [0, 100].
func (t *Tracker) PercentComplete(collection string, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(100, float64(t.SeenCount(collection))*100/float64(total))
}

// Reset clears the progress of collection.
func (t *Tracker) Reset(ctx context.Context, collection string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, existed := t.units[collection]
	t.units[collection] = unit{seen: make(map[string]struct{})}

	if err := t.persist(ctx); err != nil {
		if existed {
			t.units[collection] = prev
		} else {
			delete(t.units, collection)
		}
		return err
	}
	return nil
}

// persist writes every collection. Caller holds mu.
func (t *Tracker) persist(ctx context.Context) error {
	out := make(map[string]UnitProgress, len(t.units))
	for collection, u := range t.units {
		out[collection] = u.export()
	}
	if err := store.SaveJSON(ctx, t.kv, Key, out); err != nil {
		t.logger.ErrorContext(ctx, "failed to persist progress", slog.String("error", err.Error()))
		return err
	}
	return nil
}
