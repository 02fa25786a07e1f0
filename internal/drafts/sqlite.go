package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS drafts (
	key      TEXT PRIMARY KEY,
	data     BLOB NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_saved_at ON drafts (saved_at);
`

// SQLiteBackend stores drafts in an embedded SQLite database
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend prepares the drafts table on db. The caller keeps ownership
// of opening the database (see pkg.OpenSQLite).
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create drafts table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, key string, data []byte, savedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (key, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		key, data, savedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put draft %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM drafts WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get draft %s: %w", key, err)
	}
	return data, true, nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE saved_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweep drafts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep drafts: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
