package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.Equal(t, []float64{0.5, 1, 3, 7, 14, 30, 60, 120}, params.BaseIntervals)
	assert.Len(t, params.BaseIntervals, domain.MaxBucket)
	assert.Equal(t, 1.3, params.MinEase)
	assert.Equal(t, 3.0, params.MaxEase)
	assert.Equal(t, 0.7, params.MinFactor)
	assert.Equal(t, 1.3, params.MaxFactor)
	assert.Equal(t, 4, params.LeechLapses)
	assert.Equal(t, 24*time.Hour, params.Unit)

	for _, outcome := range []domain.ReviewOutcome{
		domain.ReviewOutcomeOK,
		domain.ReviewOutcomeHard,
		domain.ReviewOutcomeNG,
	} {
		_, ok := params.EaseAdjustment[outcome]
		assert.True(t, ok, "EaseAdjustment missing for outcome %s", outcome)
	}
	assert.Greater(t, params.EaseAdjustment[domain.ReviewOutcomeOK], 0.0)
	assert.Less(t, params.EaseAdjustment[domain.ReviewOutcomeNG], params.EaseAdjustment[domain.ReviewOutcomeHard])
}

func TestParamsForScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 24*time.Hour, ParamsForScale(ScaleSlow).Unit)
	assert.Equal(t, time.Minute, ParamsForScale(ScaleFast).Unit)
}

func TestParseScale(t *testing.T) {
	t.Parallel()

	s, err := ParseScale("fast")
	require.NoError(t, err)
	assert.Equal(t, ScaleFast, s)

	_, err = ParseScale("hourly")
	assert.Error(t, err)
}

func TestNewParams(t *testing.T) {
	t.Parallel()

	t.Run("zero config keeps defaults", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, NewDefaultParams(), NewParams(ParamsConfig{}))
	})

	t.Run("overrides are applied", func(t *testing.T) {
		t.Parallel()
		params := NewParams(ParamsConfig{
			Scale:       ScaleFast,
			LeechLapses: 6,
			MinFactor:   0.5,
			MaxFactor:   2.0,
		})
		assert.Equal(t, time.Minute, params.Unit)
		assert.Equal(t, 6, params.LeechLapses)
		assert.Equal(t, 0.5, params.MinFactor)
		assert.Equal(t, 2.0, params.MaxFactor)
	})

	t.Run("max factor below min is ignored", func(t *testing.T) {
		t.Parallel()
		params := NewParams(ParamsConfig{MaxFactor: 0.1})
		assert.Equal(t, 1.3, params.MaxFactor)
	})
}
