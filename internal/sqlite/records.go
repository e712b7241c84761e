package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/recordkeep/internal/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore implements repository.RecordStore for SQLite. Ids are stored
// bit-for-bit in a signed INTEGER column.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new RecordStore
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Has reports whether a value is stored under key
func (s *RecordStore) Has(ctx context.Context, key repository.Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM records WHERE namespace = ? AND id = ?)`,
		key.Namespace, int64(key.ID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", key, err)
	}
	return exists, nil
}

// Get returns the stored value for key
func (s *RecordStore) Get(ctx context.Context, key repository.Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE namespace = ? AND id = ?`,
		key.Namespace, int64(key.ID),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *RecordStore) Set(ctx context.Context, key repository.Key, value []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO records (namespace, id, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key.Namespace, int64(key.ID), value); err != nil {
		return fmt.Errorf("failed to set record %s: %w", key, err)
	}
	return nil
}
