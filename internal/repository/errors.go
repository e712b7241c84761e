package repository

import "errors"

var (
	// ErrNotFound is returned when no record is stored under a key
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey is returned when a key has no namespace
	ErrInvalidKey = errors.New("invalid key")

	// ErrCorruptRecord is returned when a stored value cannot be decoded
	ErrCorruptRecord = errors.New("corrupt record")
)

var (
	// ErrInvalidToken is returned when an API token resolves to no principal
	ErrInvalidToken = errors.New("invalid token")

	// ErrDuplicateKey is returned when an API key hash is already registered
	ErrDuplicateKey = errors.New("duplicate api key")
)
