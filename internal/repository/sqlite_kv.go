package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/db"
)

// SQLiteKVStore implements KVStore on the kv_store table.
type SQLiteKVStore struct {
	db db.DBTX
}

// NewSQLiteKVStore creates a new SQLiteKVStore.
func NewSQLiteKVStore(conn db.DBTX) *SQLiteKVStore {
	return &SQLiteKVStore{db: conn}
}

func (s *SQLiteKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteKVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, nowUTC()); err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}
