// Package sqlite provides a store.KVStore backed by a SQLite database file,
// using the cgo-free modernc.org/sqlite driver through sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open connects to the database at path and verifies the connection.
// An in-memory database is limited to one connection so every query sees the same data.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	return db, nil
}

// KVStore implements store.KVStore on the kv_entries table.
type KVStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Ensure KVStore implements store.KVStore interface
var _ store.KVStore = (*KVStore)(nil)

// NewKVStore wraps an open database. The schema must already be migrated.
func NewKVStore(db *sqlx.DB, logger *slog.Logger) *KVStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_kv_store")),
	}
}

// Get implements store.KVStore.Get
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM kv_entries WHERE entry_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: key %q", store.ErrNotFound, key)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read kv entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, err
	}
	return []byte(payload), nil
}

// Set implements store.KVStore.Set
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO kv_entries (entry_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (entry_key) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write kv entry",
			slog.String("key", key),
			slog.Int("bytes", len(value)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Delete implements store.KVStore.Delete
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = ?`, key); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete kv entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
