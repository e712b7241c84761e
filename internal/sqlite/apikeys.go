package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/recordkeep/internal/apikey"
	"github.com/rpggio/recordkeep/internal/repository"
)

var _ repository.PrincipalResolver = (*APIKeyRepository)(nil)

// APIKeyRepository stores hashed bearer tokens and the principals they
// authenticate as.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// AddAPIKey registers token for principal. Only the hash is stored.
func (r *APIKeyRepository) AddAPIKey(ctx context.Context, token, principal, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, principal, description) VALUES (?, ?, ?)`,
		apikey.Hash(token), principal, description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolvePrincipal returns the principal for token and records its use.
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", repository.ErrInvalidToken
	}

	hash := apikey.Hash(token)
	var principal string
	err := r.db.QueryRowContext(ctx,
		`SELECT principal FROM api_keys WHERE key_hash = ?`, hash,
	).Scan(&principal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrInvalidToken
		}
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	if principal == "" {
		return "", repository.ErrInvalidToken
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = CURRENT_TIMESTAMP WHERE key_hash = ?`, hash,
	); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return principal, nil
}
