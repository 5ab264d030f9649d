package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// Common errors
var (
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Service defines the interface for SRS algorithm operations.
// All methods are pure: they read the record they are given and never store it.
type Service interface {
	// IsDue reports whether the record should be reviewed at now.
	IsDue(rec domain.SRSRecord, now time.Time) bool

	// IntervalFor returns the wait after the last review before the record is due.
	IntervalFor(rec domain.SRSRecord) time.Duration

	// Classify derives the learning phase of the record.
	Classify(rec domain.SRSRecord) domain.Phase

	// ApplyOutcome computes the record that results from a review at now.
	ApplyOutcome(
		rec domain.SRSRecord,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (domain.SRSRecord, error)

	// Params exposes the parameters the service was built with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

func (s *defaultService) IsDue(rec domain.SRSRecord, now time.Time) bool {
	return isDue(rec, now, s.params)
}

func (s *defaultService) IntervalFor(rec domain.SRSRecord) time.Duration {
	return intervalFor(rec, s.params)
}

func (s *defaultService) Classify(rec domain.SRSRecord) domain.Phase {
	return classify(rec, s.params)
}

// ApplyOutcome implements the Service interface for applying a review
func (s *defaultService) ApplyOutcome(
	rec domain.SRSRecord,
	outcome domain.ReviewOutcome,
	now time.Time,
) (domain.SRSRecord, error) {
	if !outcome.IsValid() {
		return rec, ErrInvalidOutcome
	}

	return calculateNextRecord(rec, outcome, now, s.params), nil
}

func (s *defaultService) Params() Params {
	return *s.params
}

// DueItems filters items down to those whose record is due at now.
// Input order is preserved and duplicates are kept.
func DueItems[T domain.Identifiable](
	svc Service,
	items []T,
	lookup func(id string) domain.SRSRecord,
	now time.Time,
) []T {
	due := make([]T, 0, len(items))
	for _, item := range items {
		if svc.IsDue(lookup(item.StableID()), now) {
			due = append(due, item)
		}
	}
	return due
}
