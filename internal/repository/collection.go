package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection is a typed view of one namespace in a RecordStore. Records are
// stored as JSON documents.
type Collection[T any] struct {
	store     RecordStore
	namespace string
}

// NewCollection binds namespace in store to record type T.
func NewCollection[T any](store RecordStore, namespace string) *Collection[T] {
	return &Collection[T]{store: store, namespace: namespace}
}

// Key returns the store key for id.
func (c *Collection[T]) Key(id uint64) Key {
	return NewKey(c.namespace, id)
}

// Has reports whether a record exists for id.
func (c *Collection[T]) Has(ctx context.Context, id uint64) (bool, error) {
	ok, err := c.store.Has(ctx, c.Key(id))
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", c.Key(id), err)
	}
	return ok, nil
}

// Get loads and decodes the record for id. It returns ErrNotFound when
// nothing is stored.
func (c *Collection[T]) Get(ctx context.Context, id uint64) (*T, error) {
	data, err := c.store.Get(ctx, c.Key(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading %s: %w", c.Key(id), err)
	}

	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCorruptRecord, c.Key(id), err)
	}
	return &rec, nil
}

// Set encodes rec and stores it under id.
func (c *Collection[T]) Set(ctx context.Context, id uint64, rec *T) error {
	if rec == nil {
		return fmt.Errorf("storing %s: nil record", c.Key(id))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.Key(id), err)
	}
	if err := c.store.Set(ctx, c.Key(id), data); err != nil {
		return fmt.Errorf("storing %s: %w", c.Key(id), err)
	}
	return nil
}
