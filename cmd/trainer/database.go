package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/platform/memory"
	"github.com/phrazzld/scry-trainer/internal/platform/migrations"
	"github.com/phrazzld/scry-trainer/internal/platform/postgres"
	"github.com/phrazzld/scry-trainer/internal/platform/sqlite"
	"github.com/phrazzld/scry-trainer/internal/store"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openKVStore opens the configured backend and migrates its schema. The
// returned closer releases the connection.
func openKVStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.KVStore, io.Closer, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info("using in-memory storage; records are lost on exit")
		return memory.NewKVStore(), nopCloser{}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(ctx, db.DB, migrations.SQLite, logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		logger.Info("sqlite database ready", slog.String("path", cfg.URL))
		return sqlite.NewKVStore(db, logger), db, nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(ctx, db, migrations.Postgres, logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate postgres database: %w", err)
		}
		logger.Info("postgres database ready")
		return postgres.NewKVStore(db, logger), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
