package repository

import (
	"context"
	"fmt"
	"strings"
)

// Key addresses one record in a shared store. Namespace separates record
// families so equal ids in different families never collide.
type Key struct {
	Namespace string
	ID        uint64
}

// NewKey builds a key for the given namespace tag and id.
func NewKey(namespace string, id uint64) Key {
	return Key{Namespace: namespace, ID: id}
}

// Validate reports ErrInvalidKey when the namespace is blank.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Namespace) == "" {
		return ErrInvalidKey
	}
	return nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Namespace, k.ID)
}

// RecordStore is the opaque keyed persistence primitive shared by all
// record families.
type RecordStore interface {
	// Has reports whether a value is stored under key.
	Has(ctx context.Context, key Key) (bool, error)
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error
}

// PrincipalResolver maps an API token to the principal it was issued for.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (string, error)
}
