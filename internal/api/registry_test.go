package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/platform/memory"
	"github.com/phrazzld/scry-trainer/internal/progress"
	"github.com/phrazzld/scry-trainer/internal/service/scheduling"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/phrazzld/scry-trainer/internal/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	records, err := store.NewRecordStore(ctx, memory.NewKVStore(), nil)
	require.NoError(t, err)
	tracker, err := progress.NewTracker(ctx, memory.NewKVStore(), nil)
	require.NoError(t, err)
	engine := scheduling.NewEngine(records, srs.NewDefaultService(), nil, nil)

	errBroken := errors.New("broken pack")
	var mu sync.Mutex
	calls := map[string]int{}
	r := NewRegistry(func(ctx context.Context, collection string) (*trainer.Session, error) {
		mu.Lock()
		calls[collection]++
		mu.Unlock()
		if collection == "broken" {
			return nil, errBroken
		}
		items := []domain.Word{{ID: "a", Term: "a"}, {ID: "b", Term: "b"}}
		return trainer.NewSession(ctx, collection, items, trainer.DefaultConfig(), trainer.Dependencies{
			Scheduler: engine,
			Progress:  tracker,
		}), nil
	})

	t.Run("sessions are built once and reused", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := r.With(ctx, "unit", func(s *trainer.Session) error {
					s.Advance(ctx)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		mu.Lock()
		assert.Equal(t, 1, calls["unit"])
		mu.Unlock()
		assert.Equal(t, 1, r.Len())
	})

	t.Run("factory errors are returned and not cached", func(t *testing.T) {
		for range 2 {
			err := r.With(ctx, "broken", func(*trainer.Session) error { return nil })
			assert.ErrorIs(t, err, errBroken)
		}
		mu.Lock()
		assert.Equal(t, 2, calls["broken"])
		mu.Unlock()
	})

	t.Run("callback errors pass through", func(t *testing.T) {
		err := r.With(ctx, "unit", func(*trainer.Session) error { return trainer.ErrNoCurrentItem })
		assert.ErrorIs(t, err, trainer.ErrNoCurrentItem)
	})

	t.Run("drop forgets the session", func(t *testing.T) {
		r.Drop("unit")
		assert.Equal(t, 0, r.Len())
		require.NoError(t, r.With(ctx, "unit", func(*trainer.Session) error { return nil }))
		mu.Lock()
		assert.Equal(t, 2, calls["unit"])
		mu.Unlock()
	})

	t.Run("nil factory panics", func(t *testing.T) {
		assert.Panics(t, func() { NewRegistry(nil) })
	})
}

func TestRegistrySlowBuildDoesNotBlockOtherCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker, err := progress.NewTracker(ctx, memory.NewKVStore(), nil)
	require.NoError(t, err)
	records, err := store.NewRecordStore(ctx, memory.NewKVStore(), nil)
	require.NoError(t, err)
	engine := scheduling.NewEngine(records, srs.NewDefaultService(), nil, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	r := NewRegistry(func(ctx context.Context, collection string) (*trainer.Session, error) {
		if collection == "slow" {
			close(started)
			<-release
		}
		return trainer.NewSession(ctx, collection, nil, trainer.DefaultConfig(), trainer.Dependencies{
			Scheduler: engine,
			Progress:  tracker,
		}), nil
	})

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- r.With(ctx, "slow", func(*trainer.Session) error { return nil })
	}()
	<-started

	fastDone := make(chan error, 1)
	go func() {
		fastDone <- r.With(ctx, "fast", func(*trainer.Session) error { return nil })
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("fast collection waited for the slow build")
	}

	close(release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, r.Len())
}
