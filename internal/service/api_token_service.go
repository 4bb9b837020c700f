package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// tokenPrefix is the prefix for all API tokens
	tokenPrefix = "finl_"
	// tokenRandomBytes is the number of random bytes for the token (32 bytes = 256 bits)
	tokenRandomBytes = 32
	// tokenPrefixLength is the length of the displayable prefix (e.g., "finl_abc...xyz")
	tokenPrefixLength = 8
	// maxTokensPerUser is the maximum number of active tokens per user
	maxTokensPerUser = 10
)

// APITokenService handles API token business logic
type APITokenService struct {
	repo domain.APITokenRepository
}

// NewAPITokenService creates a new APITokenService
func NewAPITokenService(repo domain.APITokenRepository) *APITokenService {
	return &APITokenService{repo: repo}
}

// Create creates a new API token and returns the full token (shown only once)
func (s *APITokenService) Create(ctx context.Context, userID uuid.UUID, description string) (*domain.CreateAPITokenResponse, error) {
	existingTokens, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existingTokens) >= maxTokensPerUser {
		return nil, domain.ErrTooManyAPITokens
	}

	rawToken, err := generateSecureToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate secure token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	fullToken := tokenPrefix + rawToken
	hash := hashToken(fullToken)
	displayPrefix := tokenPrefix + rawToken[:tokenPrefixLength] + "..."

	token := &domain.APIToken{
		UserID:      userID,
		Description: description,
		TokenHash:   hash,
		TokenPrefix: displayPrefix,
	}

	if err := s.repo.Create(ctx, token); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create API token")
		return nil, err
	}

	log.Info().
		Str("token_id", token.ID.String()).
		Str("description", description).
		Msg("API token created")

	return &domain.CreateAPITokenResponse{
		ID:          token.ID,
		Description: description,
		TokenPrefix: displayPrefix,
		Token:       fullToken,
		CreatedAt:   token.CreatedAt,
		Warning:     "Make sure to copy your API token now. You won't be able to see it again!",
	}, nil
}

// ValidateToken resolves a presented bearer token to its stored record and
// touches last_used_at.
func (s *APITokenService) ValidateToken(ctx context.Context, token string) (*domain.APIToken, error) {
	stored, err := s.repo.GetByHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLastUsed(ctx, stored.ID); err != nil {
		// Stale last_used_at is not worth failing the request over
		log.Warn().Err(err).Str("token_id", stored.ID.String()).Msg("Failed to update token last_used_at")
	}
	return stored, nil
}

// Revoke revokes an API token
func (s *APITokenService) Revoke(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, userID, tokenID); err != nil {
		log.Error().Err(err).
			Str("token_id", tokenID.String()).
			Msg("Failed to revoke API token")
		return err
	}
	log.Info().Str("token_id", tokenID.String()).Msg("API token revoked")
	return nil
}

// GetByUser retrieves the active API tokens of a user
func (s *APITokenService) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	return s.repo.GetByUser(ctx, userID)
}

// generateSecureToken generates a URL-safe random token string
func generateSecureToken() (string, error) {
	b := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken returns the hex-free base64 SHA-256 digest stored for lookups
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
