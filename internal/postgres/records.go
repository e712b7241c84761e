package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/recordkeep/internal/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore implements repository.RecordStore for PostgreSQL. Ids are
// stored bit-for-bit in a BIGINT column.
type RecordStore struct {
	db *DB
}

func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Has(ctx context.Context, key repository.Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM records WHERE namespace = $1 AND id = $2)`,
		key.Namespace, int64(key.ID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check record %s: %w", key, err)
	}
	return exists, nil
}

func (s *RecordStore) Get(ctx context.Context, key repository.Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE namespace = $1 AND id = $2`,
		key.Namespace, int64(key.ID),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	return value, nil
}

func (s *RecordStore) Set(ctx context.Context, key repository.Key, value []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO records (namespace, id, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, id) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key.Namespace, int64(key.ID), value); err != nil {
		return fmt.Errorf("set record %s: %w", key, err)
	}
	return nil
}
