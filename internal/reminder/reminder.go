// Package reminder periodically counts the items due in a collection and
// passes the count to notifiers.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/service/scheduling"
)

// Notifier receives due counts.
type Notifier interface {
	NotifyDue(ctx context.Context, collection string, count int) error
}

// WordSource loads the items of a collection.
type WordSource interface {
	Collection(name string) ([]domain.Word, error)
}

// Config controls the reminder job. A non-positive Interval disables it.
type Config struct {
	Interval   time.Duration
	Collection string
}

// Scheduler runs the due check on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
	engine    *scheduling.Engine
	source    WordSource
	notifiers []Notifier
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a Scheduler. Call Start to begin checking.
func New(
	cfg Config,
	engine *scheduling.Engine,
	source WordSource,
	logger *slog.Logger,
	notifiers ...Notifier,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
		engine:    engine,
		source:    source,
		notifiers: notifiers,
		now:       time.Now,
		logger: logger.With(
			slog.String("component", "reminder"),
			slog.String("collection", cfg.Collection)),
	}
}

// Start schedules the check and returns immediately.
func (s *Scheduler) Start() error {
	if s.cfg.Interval <= 0 {
		s.logger.Info("reminder disabled")
		return nil
	}
	if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.run); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminder started", slog.Duration("interval", s.cfg.Interval))
	return nil
}

// Stop terminates the job.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	if _, err := s.Check(context.Background()); err != nil {
		s.logger.Error("reminder check failed", slog.String("error", err.Error()))
	}
}

// Check counts the due items now and notifies every notifier. Notifier
// failures are logged; only a load failure is returned.
func (s *Scheduler) Check(ctx context.Context) (int, error) {
	words, err := s.source.Collection(s.cfg.Collection)
	if err != nil {
		return 0, fmt.Errorf("failed to load collection %q: %w", s.cfg.Collection, err)
	}

	count := len(scheduling.DueItems(s.engine, words, s.now()))
	for _, n := range s.notifiers {
		if err := n.NotifyDue(ctx, s.cfg.Collection, count); err != nil {
			s.logger.Error("failed to send reminder", slog.String("error", err.Error()))
		}
	}
	return count, nil
}

// LogNotifier writes due counts to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifyDue implements Notifier.
func (n LogNotifier) NotifyDue(ctx context.Context, collection string, count int) error {
	if count == 0 {
		return nil
	}
	n.Logger.InfoContext(ctx, "items due for review",
		slog.String("collection", collection),
		slog.Int("count", count))
	return nil
}
