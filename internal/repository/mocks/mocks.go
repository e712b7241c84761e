package mocks

import (
	"context"

	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/stretchr/testify/mock"
)

// RecordStore is a mock for repository.RecordStore.
type RecordStore struct {
	mock.Mock
}

func (m *RecordStore) Has(ctx context.Context, key repository.Key) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *RecordStore) Get(ctx context.Context, key repository.Key) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordStore) Set(ctx context.Context, key repository.Key, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// PrincipalResolver is a mock for repository.PrincipalResolver.
type PrincipalResolver struct {
	mock.Mock
}

func (m *PrincipalResolver) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
