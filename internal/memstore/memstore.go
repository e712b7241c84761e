// Package memstore provides an in-memory RecordStore for tests and
// ephemeral servers.
package memstore

import (
	"context"
	"sync"

	"github.com/rpggio/recordkeep/internal/repository"
)

var _ repository.RecordStore = (*Store)(nil)

// Store keeps records in a map guarded by a RWMutex. Values are copied on the
// way in and out so callers never share backing arrays with the store.
type Store struct {
	mu      sync.RWMutex
	records map[repository.Key][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[repository.Key][]byte)}
}

func (s *Store) Has(_ context.Context, key repository.Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}

func (s *Store) Get(_ context.Context, key repository.Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Store) Set(_ context.Context, key repository.Key, value []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
