package domain

import "strings"

// Identifiable is implemented by anything the scheduling engine can track.
// The returned ID must be stable across loads of the same collection.
type Identifiable interface {
	StableID() string
}

// Word is a single vocabulary entry supplied by the catalog.
type Word struct {
	ID       string   `json:"id"                 yaml:"id"`
	Term     string   `json:"term"               yaml:"term"`
	Meaning  string   `json:"meaning,omitempty"  yaml:"meaning,omitempty"`
	POS      string   `json:"pos,omitempty"      yaml:"pos,omitempty"`
	Example  string   `json:"example,omitempty"  yaml:"example,omitempty"`
	CEFR     string   `json:"cefr,omitempty"     yaml:"cefr,omitempty"`
	FreqRank *int     `json:"freqRank,omitempty" yaml:"freqRank,omitempty"` // lower is more frequent
	Topics   []string `json:"topics,omitempty"   yaml:"topics,omitempty"`
}

// StableID implements Identifiable.
func (w Word) StableID() string {
	return w.ID
}

// Rank returns the frequency rank and whether one is set.
func (w Word) Rank() (int, bool) {
	if w.FreqRank == nil {
		return 0, false
	}
	return *w.FreqRank, true
}

// Validate checks that the word carries an identity and a term.
func (w Word) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return ErrEmptyItemID
	}
	if strings.TrimSpace(w.Term) == "" {
		return ErrValidation
	}
	return nil
}
