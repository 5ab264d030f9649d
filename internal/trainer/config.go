package trainer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/quota"
)

// Order is the display order of a session's pool.
type Order string

// Supported orders
const (
	OrderPack    Order = "pack"
	OrderShuffle Order = "shuffle"
	OrderWeak    Order = "weak"
)

// ParseOrder converts s into an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderPack, OrderShuffle, OrderWeak:
		return o, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}

// Config holds the session settings. It is passed in by value; the session
// never reads ambient settings.
type Config struct {
	Goal               int
	Shares             quota.Shares
	HighFrequencyFirst bool
	SRSEnabled         bool
	Order              Order
}

// DefaultConfig returns the settings of a fresh install.
func DefaultConfig() Config {
	return Config{
		Goal:               20,
		Shares:             quota.DefaultShares,
		HighFrequencyFirst: true,
		SRSEnabled:         true,
		Order:              OrderPack,
	}
}

// compareByRank orders by ascending frequency rank, unranked last, then by
// case-insensitive term.
func compareByRank(a, b domain.Word) int {
	if c := cmp.Compare(rankKey(a), rankKey(b)); c != 0 {
		return c
	}
	return cmp.Compare(strings.ToLower(a.Term), strings.ToLower(b.Term))
}

func rankKey(w domain.Word) int {
	if r, ok := w.Rank(); ok {
		return r
	}
	return int(^uint(0) >> 1)
}

// sortByRank returns a rank-ordered copy of words.
func sortByRank(words []domain.Word) []domain.Word {
	out := slices.Clone(words)
	slices.SortStableFunc(out, compareByRank)
	return out
}
