// Package trainer implements the session selector: the loop that decides
// which item comes next, feeds review outcomes to the scheduling engine, and
// keeps the per-collection cursor up to date.
package trainer

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/mistakes"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/progress"
	"github.com/phrazzld/scry-trainer/internal/quota"
)

// ErrNoCurrentItem is returned by Review when the session has no current item.
var ErrNoCurrentItem = errors.New("no current item")

// Scheduler is the part of the scheduling engine a session needs.
type Scheduler interface {
	Record(id string) domain.SRSRecord
	IsDue(id string, now time.Time) bool
	Apply(ctx context.Context, id string, outcome domain.ReviewOutcome, now time.Time) (domain.SRSRecord, error)
}

// ProgressTracker stores the cursor and seen set of a collection.
type ProgressTracker interface {
	Progress(collection string) progress.UnitProgress
	MarkSeen(ctx context.Context, id, collection string) error
	SetLastIndex(ctx context.Context, idx int, collection string) error
}

// Dependencies are the collaborators of a Session.
type Dependencies struct {
	Scheduler Scheduler
	Progress  ProgressTracker

	// Relay is the process-wide mistake buffer. At start and on Restart the
	// session takes the entries that belong to its pool and leaves the rest. Optional.
	Relay *mistakes.Buffer

	// Rand drives shuffling and PickRandom. Optional.
	Rand *rand.Rand

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// OnSelect is called with the source of every selection. Optional.
	OnSelect func(source quota.Kind)

	Logger *slog.Logger
}

// State is a read-only view of a session.
type State struct {
	Collection string             `json:"collection"`
	Index      int                `json:"index"`
	Current    *domain.Word       `json:"current,omitempty"`
	Revealed   bool               `json:"revealed"`
	Exhausted  bool               `json:"exhausted"`
	Source     quota.Kind         `json:"source,omitempty"`
	Quota      quota.SessionQuota `json:"quota"`
	PoolSize   int                `json:"pool_size"`
	Pending    int                `json:"pending_mistakes"`
}

// Session is one trainer run over a collection. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	collection string
	cfg        Config

	base  []domain.Word
	words []domain.Word
	index int

	revealed  bool
	exhausted bool
	source    quota.Kind
	quota     quota.SessionQuota
	mistakes  *mistakes.Buffer
	relay     *mistakes.Buffer

	scheduler Scheduler
	progress  ProgressTracker
	rng       *rand.Rand
	now       func() time.Time
	onSelect  func(quota.Kind)
	logger    *slog.Logger
}

// NewSession starts a session over items. The cursor resumes from the saved
// progress of collection, clamped to the pool.
func NewSession(
	ctx context.Context,
	collection string,
	items []domain.Word,
	cfg Config,
	deps Dependencies,
) *Session {
	if deps.Scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if deps.Progress == nil {
		panic("progress tracker cannot be nil")
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Session{
		collection: collection,
		cfg:        cfg,
		base:       slices.Clone(items),
		mistakes:   mistakes.NewBuffer(),
		relay:      deps.Relay,
		scheduler:  deps.Scheduler,
		progress:   deps.Progress,
		rng:        deps.Rand,
		now:        deps.Now,
		onSelect:   deps.OnSelect,
		logger: deps.Logger.With(
			slog.String("component", "trainer_session"),
			slog.String("collection", collection)),
	}

	s.index = s.progress.Progress(collection).LastIndex
	s.applyOrdering()
	s.quota = quota.Plan(cfg.Goal, cfg.Shares)
	s.absorbRelay(ctx)
	return s
}

// Collection returns the collection the session runs over.
func (s *Session) Collection() string { return s.collection }

// Config returns the settings in use.
func (s *Session) Config() Config { return s.cfg }

// Items returns the pool in display order.
func (s *Session) Items() []domain.Word { return slices.Clone(s.words) }

// Index returns the cursor, or -1 when there is no current item.
func (s *Session) Index() int { return s.index }

// Current returns the current item.
func (s *Session) Current() (domain.Word, bool) {
	if s.index < 0 || s.index >= len(s.words) {
		return domain.Word{}, false
	}
	return s.words[s.index], true
}

// Reveal shows the meaning of the current item.
func (s *Session) Reveal() { s.revealed = true }

// Revealed reports whether the meaning is shown.
func (s *Session) Revealed() bool { return s.revealed }

// Exhausted reports whether the last advance found nothing to show.
func (s *Session) Exhausted() bool { return s.exhausted }

// LastSource reports which branch produced the current item.
func (s *Session) LastSource() quota.Kind { return s.source }

// Quota returns the session quota.
func (s *Session) Quota() quota.SessionQuota { return s.quota }

// PendingMistakes returns how many relay entries are waiting.
func (s *Session) PendingMistakes() int { return s.mistakes.Len() }

// State returns a snapshot of the session.
func (s *Session) State() State {
	st := State{
		Collection: s.collection,
		Index:      s.index,
		Revealed:   s.revealed,
		Exhausted:  s.exhausted,
		Source:     s.source,
		Quota:      s.quota,
		PoolSize:   len(s.words),
		Pending:    s.mistakes.Len(),
	}
	if w, ok := s.Current(); ok {
		st.Current = &w
	}
	return st
}

// Advance selects the next item and returns it. The second result is false
// when the pool has nothing other than the current item.
//
// Sources are tried in order: the mistake relay, due reviews, relearn items,
// new items, then anything else. The first three real sources only apply while
// their quota allows; the last one ignores the quota so a session never stalls.
func (s *Session) Advance(ctx context.Context) (domain.Word, bool) {
	if !s.cfg.SRSEnabled {
		return s.Next(ctx)
	}
	if len(s.words) == 0 {
		s.index = -1
		s.exhausted = true
		return domain.Word{}, false
	}

	now := s.now()
	currentID := ""
	if w, ok := s.Current(); ok {
		currentID = w.ID
	}

	if id, ok := s.mistakes.PopNext(s.ids(), currentID); ok {
		return s.selectID(ctx, id, quota.KindRelearn)
	}

	pick := func(candidates []domain.Word) (string, bool) {
		if s.cfg.HighFrequencyFirst {
			candidates = sortByRank(candidates)
		}
		for _, w := range candidates {
			if w.ID != currentID {
				return w.ID, true
			}
		}
		return "", false
	}

	pools := []struct {
		kind  quota.Kind
		match func(w domain.Word) bool
	}{
		{quota.KindReview, func(w domain.Word) bool { return s.scheduler.IsDue(w.ID, now) }},
		{quota.KindRelearn, func(w domain.Word) bool {
			rec := s.scheduler.Record(w.ID)
			return rec.LastWrong && rec.Bucket > 0
		}},
		{quota.KindNew, func(w domain.Word) bool { return s.scheduler.Record(w.ID).Bucket == 0 }},
	}
	for _, p := range pools {
		if !s.quota.Allows(p.kind) {
			continue
		}
		if id, ok := pick(filter(s.words, p.match)); ok {
			return s.selectID(ctx, id, p.kind)
		}
	}

	for _, w := range s.words {
		if w.ID != currentID {
			return s.selectID(ctx, w.ID, quota.KindFallback)
		}
	}

	s.logger.DebugContext(ctx, "session exhausted")
	s.markCurrentSeen(ctx)
	s.index = -1
	s.revealed = false
	s.exhausted = true
	s.saveIndex(ctx)
	return domain.Word{}, false
}

// Review applies outcome to the current item, queues it for relearning on
// ng, then advances. Nothing changes if the engine rejects the outcome.
func (s *Session) Review(ctx context.Context, outcome domain.ReviewOutcome) (domain.SRSRecord, error) {
	w, ok := s.Current()
	if !ok {
		return domain.SRSRecord{}, ErrNoCurrentItem
	}

	rec, err := s.scheduler.Apply(ctx, w.ID, outcome, s.now())
	if err != nil {
		return domain.SRSRecord{}, err
	}
	s.markCurrentSeen(ctx)
	if outcome == domain.ReviewOutcomeNG {
		s.mistakes.PushBack(w.ID)
	}

	s.Advance(ctx)
	return rec, nil
}

// Next moves the cursor to the following item, ignoring SRS state. Past the
// last item the session is exhausted.
func (s *Session) Next(ctx context.Context) (domain.Word, bool) {
	s.markCurrentSeen(ctx)
	if len(s.words) == 0 {
		s.index = -1
		s.exhausted = true
		return domain.Word{}, false
	}

	s.revealed = false
	if s.index+1 < len(s.words) {
		s.index++
		s.source = ""
		s.saveIndex(ctx)
		return s.words[s.index], true
	}

	s.index = -1
	s.exhausted = true
	s.saveIndex(ctx)
	return domain.Word{}, false
}

// PickRandom jumps to a random item, ignoring SRS state.
func (s *Session) PickRandom(ctx context.Context) (domain.Word, bool) {
	if len(s.words) == 0 {
		return domain.Word{}, false
	}
	s.index = s.rng.IntN(len(s.words))
	s.revealed = false
	s.exhausted = false
	s.source = ""
	s.saveIndex(ctx)
	return s.words[s.index], true
}

// AlignToSRS advances unless the current item is due.
func (s *Session) AlignToSRS(ctx context.Context) {
	if !s.cfg.SRSEnabled {
		return
	}
	if w, ok := s.Current(); ok && s.scheduler.IsDue(w.ID, s.now()) {
		return
	}
	s.Advance(ctx)
}

// JumpToTerm moves the cursor to the first item whose term equals term,
// ignoring case. It reports whether one was found.
func (s *Session) JumpToTerm(ctx context.Context, term string) bool {
	idx := slices.IndexFunc(s.words, func(w domain.Word) bool {
		return strings.EqualFold(w.Term, term)
	})
	if idx < 0 {
		return false
	}
	s.index = idx
	s.revealed = false
	s.exhausted = false
	s.source = ""
	s.saveIndex(ctx)
	return true
}

// Restart starts the session over from the first item with a fresh quota.
// SRS records are kept.
func (s *Session) Restart(ctx context.Context, shuffled bool) {
	s.revealed = false
	s.exhausted = false
	s.source = ""
	if shuffled {
		s.rng.Shuffle(len(s.words), func(i, j int) { s.words[i], s.words[j] = s.words[j], s.words[i] })
	} else {
		s.applyOrdering()
	}
	s.index = 0
	if len(s.words) == 0 {
		s.index = -1
	}
	s.saveIndex(ctx)
	s.quota = quota.Plan(s.cfg.Goal, s.cfg.Shares)
	s.absorbRelay(ctx)
	s.logger.DebugContext(ctx, "session restarted",
		slog.Bool("shuffled", shuffled),
		slog.Int("goal", s.quota.Goal))
}

// UpdateOrder reorders the pool. The cursor index is kept, clamped.
func (s *Session) UpdateOrder(order Order) {
	s.cfg.Order = order
	s.applyOrdering()
}

// UpdateConfig applies new settings and rebuilds the quota from scratch.
// Items already served are not credited against the new quota.
func (s *Session) UpdateConfig(cfg Config) {
	reorder := cfg.Order != s.cfg.Order
	s.cfg = cfg
	if reorder {
		s.applyOrdering()
	}
	s.quota = quota.Plan(cfg.Goal, cfg.Shares)
}

// absorbRelay moves the shared relay entries that belong to this pool into
// the session buffer.
func (s *Session) absorbRelay(ctx context.Context) {
	if s.relay == nil {
		return
	}
	carried := s.relay.Take(s.ids())
	if len(carried) == 0 {
		return
	}
	s.mistakes.Seed(carried...)
	s.logger.DebugContext(ctx, "absorbed carried-over mistakes", slog.Int("count", len(carried)))
}

func (s *Session) applyOrdering() {
	switch s.cfg.Order {
	case OrderShuffle:
		s.words = slices.Clone(s.base)
		s.rng.Shuffle(len(s.words), func(i, j int) { s.words[i], s.words[j] = s.words[j], s.words[i] })
	case OrderWeak:
		now := s.now()
		s.words = slices.Clone(s.base)
		slices.SortStableFunc(s.words, func(a, b domain.Word) int {
			aDue, bDue := s.scheduler.IsDue(a.ID, now), s.scheduler.IsDue(b.ID, now)
			if aDue != bDue {
				if aDue {
					return -1
				}
				return 1
			}
			return compareByRank(a, b)
		})
	default:
		s.words = slices.Clone(s.base)
	}

	if len(s.words) == 0 {
		s.index = -1
		return
	}
	s.index = min(max(s.index, 0), len(s.words)-1)
}

func (s *Session) selectID(ctx context.Context, id string, kind quota.Kind) (domain.Word, bool) {
	idx := slices.IndexFunc(s.words, func(w domain.Word) bool { return w.ID == id })
	if idx < 0 {
		return domain.Word{}, false
	}

	s.markCurrentSeen(ctx)
	s.index = idx
	s.revealed = false
	s.exhausted = false
	s.source = kind
	s.quota.Bump(kind)
	s.saveIndex(ctx)

	logger.FromContextOrDefault(ctx, s.logger).Debug("item selected",
		slog.String("item_id", id),
		slog.String("source", string(kind)),
		slog.Int("done", s.quota.Done))
	if s.onSelect != nil {
		s.onSelect(kind)
	}
	return s.words[idx], true
}

func (s *Session) markCurrentSeen(ctx context.Context) {
	w, ok := s.Current()
	if !ok {
		return
	}
	if err := s.progress.MarkSeen(ctx, w.ID, s.collection); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark item seen",
			slog.String("item_id", w.ID),
			slog.String("error", err.Error()))
	}
}

func (s *Session) saveIndex(ctx context.Context) {
	if err := s.progress.SetLastIndex(ctx, s.index, s.collection); err != nil {
		s.logger.ErrorContext(ctx, "failed to save cursor",
			slog.Int("index", s.index),
			slog.String("error", err.Error()))
	}
}

func (s *Session) ids() []string {
	ids := make([]string, len(s.words))
	for i, w := range s.words {
		ids[i] = w.ID
	}
	return ids
}

func filter(words []domain.Word, keep func(domain.Word) bool) []domain.Word {
	var out []domain.Word
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
