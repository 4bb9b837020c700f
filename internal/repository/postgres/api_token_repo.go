package postgres

import (
	"context"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(pool *pgxpool.Pool) *APITokenRepository {
	return &APITokenRepository{pool: pool}
}

// Create creates a new API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	id := uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO api_tokens (id, user_id, description, token_hash, token_prefix)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		id, token.UserID, token.Description, token.TokenHash, token.TokenPrefix).
		Scan(&token.CreatedAt)
	if err != nil {
		return err
	}
	token.ID = id
	return nil
}

// GetByUser retrieves all active API tokens for a user
func (r *APITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, description, token_hash, token_prefix, last_used_at, created_at, revoked_at
		FROM api_tokens WHERE user_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.APIToken
	for rows.Next() {
		t, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetByHash retrieves an active API token by its hash (for authentication)
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, description, token_hash, token_prefix, last_used_at, created_at, revoked_at
		FROM api_tokens WHERE token_hash = $1 AND revoked_at IS NULL`, hash)
	token, err := scanAPIToken(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAPITokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// Revoke marks an API token as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET revoked_at = now()
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPITokenNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_tokens SET last_used_at = now() WHERE id = $1`, id)
	return err
}

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var t domain.APIToken
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.TokenHash, &t.TokenPrefix,
		&t.LastUsedAt, &t.CreatedAt, &t.RevokedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
