package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// Scale selects the time unit that bucket intervals are expressed in.
type Scale string

// Supported interval scales.
const (
	// ScaleSlow is the production scale: one interval unit is one day.
	ScaleSlow Scale = "slow"
	// ScaleFast keeps the same multipliers with one-minute units, for manual testing.
	ScaleFast Scale = "fast"
)

// ParseScale converts a configuration string into a Scale.
func ParseScale(s string) (Scale, error) {
	switch Scale(s) {
	case ScaleSlow, ScaleFast:
		return Scale(s), nil
	default:
		return "", fmt.Errorf("unknown interval scale %q", s)
	}
}

// Unit returns the duration of one interval unit for the scale.
func (s Scale) Unit() time.Duration {
	if s == ScaleFast {
		return time.Minute
	}
	return 24 * time.Hour
}

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// BaseIntervals holds the interval in units for buckets 1..8, indexed by bucket-1.
	BaseIntervals []float64

	// Ease limits
	MinEase float64
	MaxEase float64

	// The ease-derived interval multiplier is clamped to [MinFactor, MaxFactor].
	MinFactor float64
	MaxFactor float64

	// Ease adjustments for each review outcome
	EaseAdjustment map[domain.ReviewOutcome]float64

	// LeechLapses is the lapse count at which a record classifies as a leech.
	LeechLapses int

	// Unit is the length of one interval unit.
	Unit time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	Scale       Scale
	LeechLapses int
	MinFactor   float64
	MaxFactor   float64
}

// NewDefaultParams creates a new Params instance with default values on the slow scale
func NewDefaultParams() *Params {
	return &Params{
		BaseIntervals: []float64{0.5, 1, 3, 7, 14, 30, 60, 120},

		MinEase: domain.MinEase,
		MaxEase: domain.MaxEase,

		MinFactor: 0.7,
		MaxFactor: 1.3,

		EaseAdjustment: map[domain.ReviewOutcome]float64{
			domain.ReviewOutcomeOK:   0.05,
			domain.ReviewOutcomeHard: -0.05,
			domain.ReviewOutcomeNG:   -0.20,
		},

		LeechLapses: domain.LeechLapses,
		Unit:        ScaleSlow.Unit(),
	}
}

// ParamsForScale returns the default parameters with the unit of the given scale.
func ParamsForScale(scale Scale) *Params {
	params := NewDefaultParams()
	params.Unit = scale.Unit()
	return params
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.Scale != "" {
		params.Unit = config.Scale.Unit()
	}
	if config.LeechLapses > 0 {
		params.LeechLapses = config.LeechLapses
	}
	if config.MinFactor > 0 {
		params.MinFactor = config.MinFactor
	}
	if config.MaxFactor > 0 && config.MaxFactor >= params.MinFactor {
		params.MaxFactor = config.MaxFactor
	}

	return params
}
