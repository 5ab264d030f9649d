package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-trainer/internal/api"
	"github.com/phrazzld/scry-trainer/internal/catalog"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/events"
	"github.com/phrazzld/scry-trainer/internal/metrics"
	"github.com/phrazzld/scry-trainer/internal/mistakes"
	"github.com/phrazzld/scry-trainer/internal/plan"
	"github.com/phrazzld/scry-trainer/internal/progress"
	"github.com/phrazzld/scry-trainer/internal/reminder"
	"github.com/phrazzld/scry-trainer/internal/service/scheduling"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/phrazzld/scry-trainer/internal/trainer"
)

const shutdownTimeout = 10 * time.Second

// application holds the wired components of a running trainer.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       io.Closer
	engine   *scheduling.Engine
	tracker  *progress.Tracker
	relay    *mistakes.Buffer
	catalog  filteredCatalog
	metrics  *metrics.Metrics
	emitter  *events.InMemoryEventEmitter
	sessions *api.Registry
	reminder *reminder.Scheduler
}

// newApplication opens storage and wires every component. The caller owns
// the returned application and must Run it or call cleanup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	kv, db, err := openKVStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app := &application{config: cfg, logger: logger, db: db}

	if err := app.wire(ctx, kv); err != nil {
		app.cleanup()
		return nil, err
	}
	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) wire(ctx context.Context, kv store.KVStore) error {
	cfg := app.config

	scale, err := srs.ParseScale(cfg.Session.IntervalScale)
	if err != nil {
		return fmt.Errorf("invalid interval scale: %w", err)
	}

	records, err := store.NewRecordStore(ctx, kv, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load srs records: %w", err)
	}
	app.tracker, err = progress.NewTracker(ctx, kv, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	app.metrics = metrics.New()
	app.emitter = events.NewInMemoryEventEmitter(app.logger)
	app.emitter.Subscribe(app.metrics)

	app.engine = scheduling.NewEngine(records, srs.NewServiceWithParams(srs.ParamsForScale(scale)), app.emitter, app.logger)
	app.relay = mistakes.NewBuffer()
	app.catalog = filteredCatalog{
		Loader: catalog.NewLoader(cfg.Catalog.Dir, app.logger),
		filter: catalogFilter(cfg.Catalog),
	}
	app.sessions = api.NewRegistry(app.newSession)
	app.reminder = reminder.New(
		reminderConfig(cfg.Reminder),
		app.engine,
		app.catalog,
		app.logger,
		app.metrics,
		reminder.LogNotifier{Logger: app.logger},
	)
	return nil
}

// newSession builds the trainer session of a collection.
func (app *application) newSession(ctx context.Context, collection string) (*trainer.Session, error) {
	words, err := app.catalog.Collection(collection)
	if err != nil {
		return nil, err
	}
	app.logger.Info("session started",
		slog.String("collection", collection),
		slog.Int("words", len(words)))
	return trainer.NewSession(ctx, collection, words, trainerConfig(app.config.Session), trainer.Dependencies{
		Scheduler: app.engine,
		Progress:  app.tracker,
		Relay:     app.relay,
		OnSelect:  app.metrics.RecordSelection,
		Logger:    app.logger,
	}), nil
}

func (app *application) router() http.Handler {
	h := api.NewTrainerHandler(api.HandlerDeps{
		Sessions: app.sessions,
		Engine:   app.engine,
		Progress: app.tracker,
		Catalog:  app.catalog,
		Relay:    app.relay,
		Steps:    plan.StepsForGoal(app.config.Session.Goal),
		Logger:   app.logger,
	})
	return api.NewRouter(h, api.RouterOptions{
		Observer: app.metrics,
		Metrics:  app.metrics.Handler(),
		Logger:   app.logger,
	})
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts down.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.reminder.Start(); err != nil {
		return fmt.Errorf("failed to start reminder: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.reminder != nil {
		app.reminder.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
