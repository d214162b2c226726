package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps the token pair in a key-value table of a SQLite
// database. Both rows are written inside one transaction so the pair stays
// atomic even if the process dies mid-rotation.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) the database at path and
// applies pending schema migrations.
func OpenSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return nil, fmt.Errorf("credstore: creating directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("credstore: opening %s: %w", path, err)
	}

	// SQLite allows one writer; serialize access through a single connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations applies all pending schema migrations.
// Uses the goose v3 Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("credstore: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("credstore: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("credstore: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Debug("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// Load reads both tokens. Returns (nil, nil) when neither key exists and
// ErrPartialPair when only one does.
func (s *SQLiteStore) Load(ctx context.Context) (*TokenPair, error) {
	var pair TokenPair

	access, err := s.get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}

	refresh, err := s.get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	switch {
	case access == "" && refresh == "":
		return nil, nil //nolint:nilnil // sentinel for "not logged in"
	case access == "" || refresh == "":
		return nil, ErrPartialPair
	}

	pair.AccessToken = access
	pair.RefreshToken = refresh

	return &pair, nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("credstore: reading %s: %w", key, err)
	}

	return value, nil
}

// Save upserts both tokens in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, pair TokenPair) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("credstore: refusing to save incomplete pair: %w", ErrPartialPair)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("credstore: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const upsert = `INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := tx.ExecContext(ctx, upsert, KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("credstore: writing %s: %w", KeyAccessToken, err)
	}

	if _, err := tx.ExecContext(ctx, upsert, KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("credstore: writing %s: %w", KeyRefreshToken, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("credstore: committing: %w", err)
	}

	return nil
}

// Clear deletes both tokens. Idempotent.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE key IN (?, ?)`, KeyAccessToken, KeyRefreshToken,
	)
	if err != nil {
		return fmt.Errorf("credstore: clearing credentials: %w", err)
	}

	return nil
}
