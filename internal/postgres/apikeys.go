package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/recordkeep/internal/apikey"
	"github.com/rpggio/recordkeep/internal/repository"
)

var _ repository.PrincipalResolver = (*APIKeyRepository)(nil)

type APIKeyRepository struct {
	db *DB
}

func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) AddAPIKey(ctx context.Context, token, principal, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, principal, description) VALUES ($1, $2, $3)`,
		apikey.Hash(token), principal, description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("add api key: %w", err)
	}
	return nil
}

// ResolvePrincipal looks up the token hash and stamps last_used in the same
// statement.
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", repository.ErrInvalidToken
	}

	var principal string
	err := r.db.QueryRowContext(ctx,
		`UPDATE api_keys SET last_used = now() WHERE key_hash = $1 RETURNING principal`,
		apikey.Hash(token),
	).Scan(&principal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrInvalidToken
		}
		return "", fmt.Errorf("resolve api key: %w", err)
	}
	if principal == "" {
		return "", repository.ErrInvalidToken
	}
	return principal, nil
}
