package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

// SQLiteStore persists session snapshots in a local SQLite file, the
// default backend for single-machine imports.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS import_session (
			id         TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure import_session table: %w", err)
	}
	logger.Info("sqlite session store ready", "path", path)
	return &SQLiteStore{db: db, log: logger}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, id uuid.UUID, state []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_session (id, state, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = datetime('now')`,
		id.String(), string(state))
	if err != nil {
		s.log.Error("session snapshot write failed", "session_id", id, "error", err)
		return fmt.Errorf("put session %s: %w", id, common.ErrStoreUnavailable)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM import_session WHERE id = ?`, id.String()).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		s.log.Error("session snapshot read failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("get session %s: %w", id, common.ErrStoreUnavailable)
	}
	return []byte(state), nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM import_session ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", common.ErrStoreUnavailable)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
