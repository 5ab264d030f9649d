package domain

import (
	"fmt"
	"time"
)

// ReviewOutcome is the learner's self-assessment after seeing an item.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeOK   ReviewOutcome = "ok"
	ReviewOutcomeHard ReviewOutcome = "hard"
	ReviewOutcomeNG   ReviewOutcome = "ng"
)

// IsValid reports whether o is one of the known outcomes.
func (o ReviewOutcome) IsValid() bool {
	switch o {
	case ReviewOutcomeOK, ReviewOutcomeHard, ReviewOutcomeNG:
		return true
	default:
		return false
	}
}

// ParseReviewOutcome converts a wire string into a ReviewOutcome.
func ParseReviewOutcome(s string) (ReviewOutcome, error) {
	o := ReviewOutcome(s)
	if !o.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReviewOutcome, s)
	}
	return o, nil
}

// Phase is the derived learning stage of a record. It is never persisted.
type Phase string

// Possible phases, see srs.Service.Classify for the derivation order.
const (
	PhaseNew        Phase = "new"
	PhaseLearning   Phase = "learning"
	PhaseReview     Phase = "review"
	PhaseRelearning Phase = "relearning"
	PhaseLeech      Phase = "leech"
)

// Bucket and ease bounds shared by the engine and the record store.
const (
	MinBucket   = 0
	MaxBucket   = 8
	MinEase     = 1.3
	MaxEase     = 3.0
	DefaultEase = 2.5
	LeechLapses = 4
)

// SRSRecord is the per-item scheduling state.
// Bucket 0 means the item has never been reviewed.
type SRSRecord struct {
	Bucket         int        `json:"bucket"`
	Ease           float64    `json:"ease"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	Lapses         int        `json:"lapses"`
	LastWrong      bool       `json:"last_wrong"`
}

// NewSRSRecord returns the default record for an item that has never been seen.
func NewSRSRecord() SRSRecord {
	return SRSRecord{Ease: DefaultEase}
}

// Clamped returns a copy of r with every field forced back into its domain.
func (r SRSRecord) Clamped() SRSRecord {
	out := r
	out.Bucket = ClampBucket(r.Bucket)
	out.Ease = ClampEase(r.Ease)
	if out.Lapses < 0 {
		out.Lapses = 0
	}
	if r.LastReviewedAt != nil {
		t := *r.LastReviewedAt
		out.LastReviewedAt = &t
	}
	return out
}

// ClampBucket forces b into [MinBucket, MaxBucket].
func ClampBucket(b int) int {
	return min(max(b, MinBucket), MaxBucket)
}

// ClampEase forces e into [MinEase, MaxEase].
func ClampEase(e float64) float64 {
	return min(max(e, MinEase), MaxEase)
}
