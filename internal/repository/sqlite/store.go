// Package sqlite provides a SQLite-backed cart record storage.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists cart records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, or an in-memory one for ":memory:",
// and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every new connection would see its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context, key string) ([]domain.CartLine, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM cart_records WHERE record_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlDB.QueryRowContext: %w", err)
	}

	lines, err := repository.DecodeLines([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("repository.DecodeLines: %w", err)
	}
	return lines, nil
}

func (s *Store) Save(ctx context.Context, key string, lines []domain.CartLine) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	payload, err := repository.EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("repository.EncodeLines: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO cart_records (record_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (record_key) DO UPDATE
SET payload    = excluded.payload,
    version    = cart_records.version + 1,
    updated_at = excluded.updated_at
WHERE cart_records.payload <> excluded.payload`,
		key, string(payload), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlDB.ExecContext: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM cart_records WHERE record_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("sqlDB.ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("res.RowsAffected: %w", err)
	}
	return n > 0, nil
}

// Version returns how many times the record content changed, 0 if absent.
func (s *Store) Version(ctx context.Context, key string) (int64, error) {
	var version int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT version FROM cart_records WHERE record_key = ?`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlDB.QueryRowContext: %w", err)
	}
	return version, nil
}
