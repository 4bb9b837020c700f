package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// APIToken represents an API access token for programmatic access
type APIToken struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Description string     `json:"description"`
	TokenHash   string     `json:"-"` // Never expose hash
	TokenPrefix string     `json:"tokenPrefix"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
}

// CreateAPITokenResponse includes the full token for one-time display
type CreateAPITokenResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	TokenPrefix string    `json:"tokenPrefix"`
	Token       string    `json:"token"` // Full token - shown only once!
	CreatedAt   time.Time `json:"createdAt"`
	Warning     string    `json:"warning"`
}

// APITokenRepository defines the interface for API token persistence
type APITokenRepository interface {
	Create(ctx context.Context, token *APIToken) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*APIToken, error)
	GetByHash(ctx context.Context, hash string) (*APIToken, error)
	Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}
