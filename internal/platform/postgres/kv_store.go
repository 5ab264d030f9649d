package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/store"
)

// Open connects to PostgreSQL through the pgx stdlib driver, configures the
// connection pool and verifies connectivity.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// KVStore implements store.KVStore using a PostgreSQL kv_entries table.
type KVStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure KVStore implements store.KVStore interface
var _ store.KVStore = (*KVStore)(nil)

// NewKVStore creates a new PostgreSQL key-value store.
// It accepts a database connection or transaction that is managed by the caller.
// If logger is nil, a default logger will be used.
func NewKVStore(db store.DBTX, logger *slog.Logger) *KVStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_kv_store")),
	}
}

// Get implements store.KVStore.Get
// Returns store.ErrNotFound if the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM kv_entries WHERE entry_key = $1`, key).Scan(&payload)
	if err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to read kv entry",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, mapped
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
		VALUES ($1, $2, $3)
		ON CONFLICT (entry_key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write kv entry",
			slog.String("key", key),
			slog.Int("bytes", len(value)),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Delete implements store.KVStore.Delete
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = $1`, key); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete kv entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}
