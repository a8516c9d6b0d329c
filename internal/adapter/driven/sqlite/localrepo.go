package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/polyask/polyask/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KVStore = (*LocalRepo)(nil)

// LocalRepo is the SQLite implementation of the KVStore port, backed by the
// local_store table.
type LocalRepo struct {
	db *DB
}

// NewLocalRepo creates a new LocalRepo.
func NewLocalRepo(db *DB) *LocalRepo {
	return &LocalRepo{db: db}
}

// Get returns the value stored under key, or ("", nil) when absent.
func (r *LocalRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM local_store WHERE key = ?`
	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set stores or replaces the value under key.
func (r *LocalRepo) Set(ctx context.Context, key, value string) error {
	const query = `INSERT OR REPLACE INTO local_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Removing an absent key is a no-op.
func (r *LocalRepo) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM local_store WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Keys returns all stored keys starting with prefix, sorted.
func (r *LocalRepo) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT key FROM local_store WHERE substr(key, 1, length(?)) = ? ORDER BY key`
	rows, err := r.db.Reader.QueryContext(ctx, query, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("keys %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}
