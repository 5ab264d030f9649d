// Package plan builds the static "today" plan shown before a session starts:
// which items are new, which are due for review and which need relearning.
package plan

import (
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/service/scheduling"
)

// Steps caps the size of each part of a plan.
type Steps struct {
	Learning   int `json:"learning"`
	Review     int `json:"review"`
	Relearning int `json:"relearning"`
}

// DefaultSteps are used when no goal is given.
var DefaultSteps = Steps{Learning: 10, Review: 20, Relearning: 10}

// StepsForGoal splits a daily goal: a third new, the rest review, and a
// quarter of the goal (at most 10) for relearning.
func StepsForGoal(goal int) Steps {
	learn := max(0, goal/3)
	return Steps{
		Learning:   learn,
		Review:     max(0, goal-learn),
		Relearning: max(0, min(10, goal/4)),
	}
}

// Reader supplies the learner state a plan is built from.
type Reader struct {
	WrongIDs []string
	DueIDs   []string
}

// TodayPlan lists item IDs per category, in selection order.
type TodayPlan struct {
	New     []string `json:"new"`
	Review  []string `json:"review"`
	Relearn []string `json:"relearn"`
}

// Total returns the number of planned items.
func (p TodayPlan) Total() int {
	return len(p.New) + len(p.Review) + len(p.Relearn)
}

// Build plans from loadedIDs. Relearn takes the first wrong IDs, review the
// first due IDs, and new the loaded IDs that are in neither list.
func Build(loadedIDs []string, r Reader, steps Steps) TodayPlan {
	relearn := head(r.WrongIDs, steps.Relearning)

	exclude := make(map[string]struct{}, len(r.DueIDs)+len(relearn))
	for _, id := range r.DueIDs {
		exclude[id] = struct{}{}
	}
	for _, id := range relearn {
		exclude[id] = struct{}{}
	}

	var fresh []string
	for _, id := range loadedIDs {
		if len(fresh) >= steps.Learning {
			break
		}
		if _, skip := exclude[id]; !skip {
			fresh = append(fresh, id)
		}
	}

	return TodayPlan{
		New:     fresh,
		Review:  head(r.DueIDs, steps.Review),
		Relearn: relearn,
	}
}

// BuildForWords plans over words using the engine's current records.
func BuildForWords(engine *scheduling.Engine, words []domain.Word, steps Steps, now time.Time) TodayPlan {
	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	var due []string
	for _, w := range scheduling.DueItems(engine, words, now) {
		due = append(due, w.ID)
	}
	return Build(ids, Reader{WrongIDs: scheduling.WrongIDs(engine, words), DueIDs: due}, steps)
}

func head(ids []string, n int) []string {
	out := make([]string, max(0, min(n, len(ids))))
	copy(out, ids)
	return out
}
