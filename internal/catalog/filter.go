package catalog

import (
	"strings"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// DefaultHighFrequencyCutoff is the rank above which a word stops counting as high frequency.
const DefaultHighFrequencyCutoff = 5000

// Filter narrows a cross-pack collection. The zero value keeps everything.
type Filter struct {
	// CEFR keeps only words of this level. Empty or "all" disables it.
	CEFR string

	// HighFrequencyOnly drops ranked words above Cutoff. Unranked words are kept.
	HighFrequencyOnly bool
	Cutoff            int

	// Topics keeps words sharing at least one topic, case-insensitively.
	Topics []string
}

// ParseTopics splits a comma or space separated topic list.
func ParseTopics(csv string) []string {
	fields := strings.FieldsFunc(csv, func(r rune) bool {
		return r == ',' || r == ' ' || r == '、'
	})
	var out []string
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Apply returns the words that pass every enabled condition, in input order.
func (f Filter) Apply(words []domain.Word) []domain.Word {
	cutoff := f.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultHighFrequencyCutoff
	}
	topics := make(map[string]struct{}, len(f.Topics))
	for _, t := range f.Topics {
		topics[strings.ToLower(t)] = struct{}{}
	}
	level := strings.TrimSpace(f.CEFR)
	if strings.EqualFold(level, "all") {
		level = ""
	}

	out := make([]domain.Word, 0, len(words))
	for _, w := range words {
		if level != "" && !strings.EqualFold(w.CEFR, level) {
			continue
		}
		if r, ok := w.Rank(); f.HighFrequencyOnly && ok && r > cutoff {
			continue
		}
		if len(topics) > 0 && !sharesTopic(w, topics) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func sharesTopic(w domain.Word, topics map[string]struct{}) bool {
	for _, t := range w.Topics {
		if _, ok := topics[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}
