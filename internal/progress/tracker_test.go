package progress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/scry-trainer/internal/platform/memory"
	"github.com/phrazzld/scry-trainer/internal/progress"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingKV accepts reads and rejects every write.
type failingKV struct {
	*memory.KVStore
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("read-only")
}

func newTracker(t *testing.T) (*progress.Tracker, *memory.KVStore) {
	t.Helper()
	kv := memory.NewKVStore()
	tr, err := progress.NewTracker(context.Background(), kv, nil)
	require.NoError(t, err)
	return tr, kv
}

func TestDefaultProgress(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)

	p := tr.Progress("unit1.json")
	assert.Equal(t, 0, p.LastIndex)
	assert.Empty(t, p.SeenIDs)
	assert.Equal(t, 0, tr.SeenCount("unit1.json"))
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)

	require.NoError(t, tr.MarkSeen(ctx, "w1", "unit1"))
	once := tr.SeenCount("unit1")
	require.NoError(t, tr.MarkSeen(ctx, "w1", "unit1"))

	assert.Equal(t, 1, once)
	assert.Equal(t, once, tr.SeenCount("unit1"))
	assert.True(t, tr.Progress("unit1").Seen("w1"))
	assert.Equal(t, 0, tr.SeenCount("unit2"), "collections are independent")
}

func TestProgressPersistsAcrossTrackers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, kv := newTracker(t)

	require.NoError(t, tr.MarkSeen(ctx, "b", "unit1"))
	require.NoError(t, tr.MarkSeen(ctx, "a", "unit1"))
	require.NoError(t, tr.SetLastIndex(ctx, 5, "unit1"))

	reloaded, err := progress.NewTracker(ctx, kv, nil)
	require.NoError(t, err)
	p := reloaded.Progress("unit1")
	assert.Equal(t, 5, p.LastIndex)
	assert.Equal(t, []string{"a", "b"}, p.SeenIDs)
}

func TestPercentComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)

	assert.Equal(t, 0.0, tr.PercentComplete("u", 0))
	require.NoError(t, tr.MarkSeen(ctx, "a", "u"))
	assert.Equal(t, 25.0, tr.PercentComplete("u", 4))
	assert.Equal(t, 100.0, tr.PercentComplete("u", 1))
}

func TestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, _ := newTracker(t)

	require.NoError(t, tr.MarkSeen(ctx, "a", "u"))
	require.NoError(t, tr.SetLastIndex(ctx, 3, "u"))
	require.NoError(t, tr.Reset(ctx, "u"))

	p := tr.Progress("u")
	assert.Equal(t, 0, p.LastIndex)
	assert.Empty(t, p.SeenIDs)
}

func TestCorruptProgressIsDiscarded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(ctx, progress.Key, []byte("[1,2")))

	tr, err := progress.NewTracker(ctx, kv, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, tr.SeenCount("u"))
}

func TestWriteFailureRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, err := progress.NewTracker(ctx, failingKV{memory.NewKVStore()}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, tr.MarkSeen(ctx, "a", "u"), store.ErrUpdateFailed)
	assert.Equal(t, 0, tr.SeenCount("u"))

	assert.Error(t, tr.SetLastIndex(ctx, 9, "u"))
	assert.Equal(t, 0, tr.Progress("u").LastIndex)
}
