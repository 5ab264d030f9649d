package srs

import (
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// intervalFor returns how long a record waits after its last review before it is due again.
//
// The base interval comes from params.BaseIntervals indexed by the record's bucket,
// clamped to [1, 8] so that a bucket-0 record still has a defined interval. It is
// scaled by ease/2.5, itself clamped to [params.MinFactor, params.MaxFactor], so the
// default ease of 2.5 leaves the base interval untouched.
func intervalFor(rec domain.SRSRecord, params *Params) time.Duration {
	b := min(max(rec.Bucket, 1), len(params.BaseIntervals))
	base := params.BaseIntervals[b-1]

	factor := min(max(rec.Ease/domain.DefaultEase, params.MinFactor), params.MaxFactor)

	return time.Duration(base * factor * float64(params.Unit))
}

// isDue reports whether rec should be reviewed at now.
// Bucket-0 records are never due. A bucketed record without a timestamp is due immediately.
func isDue(rec domain.SRSRecord, now time.Time, params *Params) bool {
	if rec.Bucket <= 0 {
		return false
	}
	if rec.LastReviewedAt == nil {
		return true
	}
	next := rec.LastReviewedAt.Add(intervalFor(rec, params))
	return !now.Before(next)
}

// classify derives the phase of a record. The checks run in a fixed order and the
// first match wins, so a leech that was also answered wrong last stays a leech.
func classify(rec domain.SRSRecord, params *Params) domain.Phase {
	switch {
	case rec.Bucket <= 0:
		return domain.PhaseNew
	case rec.Lapses >= params.LeechLapses:
		return domain.PhaseLeech
	case rec.LastWrong:
		return domain.PhaseRelearning
	case rec.Bucket == 1 && rec.LastReviewedAt == nil:
		return domain.PhaseLearning
	default:
		return domain.PhaseReview
	}
}

// calculateNewEase applies the outcome adjustment and clamps the result to the ease limits.
func calculateNewEase(current float64, outcome domain.ReviewOutcome, params *Params) float64 {
	newEase := current + params.EaseAdjustment[outcome]
	return min(max(newEase, params.MinEase), params.MaxEase)
}

// calculateNewBucket moves the bucket according to the outcome.
//   - ok climbs one tier, saturating at the top bucket
//   - hard keeps the tier but lifts new items into bucket 1
//   - ng resets to bucket 1
func calculateNewBucket(current int, outcome domain.ReviewOutcome) int {
	switch outcome {
	case domain.ReviewOutcomeOK:
		return min(current+1, domain.MaxBucket)
	case domain.ReviewOutcomeHard:
		return domain.ClampBucket(max(current, 1))
	default:
		return 1
	}
}

// calculateNextRecord returns a new record reflecting outcome at now.
// The input record is not modified.
func calculateNextRecord(
	rec domain.SRSRecord,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
) domain.SRSRecord {
	next := rec.Clamped()

	next.Bucket = calculateNewBucket(next.Bucket, outcome)
	next.Ease = calculateNewEase(next.Ease, outcome, params)
	next.LastWrong = outcome == domain.ReviewOutcomeNG
	if outcome == domain.ReviewOutcomeNG {
		next.Lapses++
	}

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt

	return next
}
