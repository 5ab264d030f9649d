// Package quota splits a session goal into review, relearn and new allowances.
package quota

import "math"

// Kind is the category an item was served from.
type Kind string

// Categories tracked by a SessionQuota.
const (
	KindReview   Kind = "review"
	KindRelearn  Kind = "relearn"
	KindNew      Kind = "new"
	KindFallback Kind = "fallback"
)

// Shares are relative weights for the three categories. They need not sum to 100.
type Shares struct {
	Review  int `json:"review"`
	Relearn int `json:"relearn"`
	New     int `json:"new"`
}

// DefaultShares is the 60/20/20 split used when nothing is configured.
var DefaultShares = Shares{Review: 60, Relearn: 20, New: 20}

func (s Shares) normalized() Shares {
	clamp := func(v int) int { return max(v, 0) }
	return Shares{Review: clamp(s.Review), Relearn: clamp(s.Relearn), New: clamp(s.New)}
}

// SessionQuota is the remaining allowance for one trainer session.
// Counters never go below zero.
type SessionQuota struct {
	Goal    int `json:"goal"`
	Done    int `json:"done"`
	Review  int `json:"review"`
	Relearn int `json:"relearn"`
	New     int `json:"new"`
}

// Plan partitions goal by shares. Review and relearn are rounded half away
// from zero; relearn is capped so that it never exceeds what review leaves,
// and new takes the remainder. The three allowances therefore always sum to
// the goal. A goal below 1 is treated as 1 and a negative share is treated as 0.
func Plan(goal int, shares Shares) SessionQuota {
	total := max(1, goal)
	s := shares.normalized()
	sum := max(1, s.Review+s.Relearn+s.New)

	review := int(math.Round(float64(total) * float64(s.Review) / float64(sum)))
	review = min(review, total)
	relearn := int(math.Round(float64(total) * float64(s.Relearn) / float64(sum)))
	relearn = min(relearn, total-review)
	newQuota := total - review - relearn

	return SessionQuota{
		Goal:    total,
		Review:  review,
		Relearn: relearn,
		New:     newQuota,
	}
}

// Allows reports whether kind still has allowance. Fallback is always allowed.
func (q SessionQuota) Allows(kind Kind) bool {
	switch kind {
	case KindReview:
		return q.Review > 0
	case KindRelearn:
		return q.Relearn > 0
	case KindNew:
		return q.New > 0
	default:
		return true
	}
}

// Bump records one served item of kind. Fallback only counts towards Done.
func (q *SessionQuota) Bump(kind Kind) {
	q.Done++
	switch kind {
	case KindReview:
		q.Review = max(0, q.Review-1)
	case KindRelearn:
		q.Relearn = max(0, q.Relearn-1)
	case KindNew:
		q.New = max(0, q.New-1)
	}
}

// Remaining is the sum of the three real allowances.
func (q SessionQuota) Remaining() int {
	return q.Review + q.Relearn + q.New
}

// Exhausted reports whether every real allowance is used up.
func (q SessionQuota) Exhausted() bool {
	return q.Remaining() == 0
}
