package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulseboard/pulseboard/internal/shared"
)

// Repository loads API key credentials.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetKey fetches a key by id.
func (r *Repository) GetKey(ctx context.Context, id uuid.UUID) (APIKey, error) {
	if r == nil || r.pool == nil {
		return APIKey{}, fmt.Errorf("auth repo not initialised")
	}
	const query = `
		SELECT id, org_id, name, secret_hash, created_at, revoked_at
		FROM api_keys WHERE id = $1`
	var key APIKey
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&key.ID, &key.OrgID, &key.Name, &key.SecretHash, &key.CreatedAt, &key.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APIKey{}, shared.ErrInvalidAPIKey
		}
		return APIKey{}, err
	}
	return key, nil
}

// TouchKey records key usage; failures are non-fatal for the request.
func (r *Repository) TouchKey(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("auth repo not initialised")
	}
	const query = `UPDATE api_keys SET last_used_at = now() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
