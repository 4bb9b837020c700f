package handler

import (
	"errors"
	"net/http"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// APITokenHandler handles API token management requests
type APITokenHandler struct {
	tokenService *service.APITokenService
}

// NewAPITokenHandler creates a new APITokenHandler
func NewAPITokenHandler(tokenService *service.APITokenService) *APITokenHandler {
	return &APITokenHandler{tokenService: tokenService}
}

// CreateAPITokenRequest represents the create token request body
type CreateAPITokenRequest struct {
	Description string `json:"description"`
}

// Create handles POST /api/v1/tokens
func (h *APITokenHandler) Create(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAPITokenRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Description == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	}

	token, err := h.tokenService.Create(c.Request().Context(), userID, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyAPITokens) {
			return NewValidationError(c, "Too many active API tokens", nil)
		}
		log.Error().Err(err).Msg("Failed to create API token")
		return NewInternalError(c, "Failed to create API token")
	}

	return c.JSON(http.StatusCreated, token)
}

// List handles GET /api/v1/tokens
func (h *APITokenHandler) List(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokens, err := h.tokenService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list API tokens")
		return NewInternalError(c, "Failed to list API tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

// Revoke handles DELETE /api/v1/tokens/:id
func (h *APITokenHandler) Revoke(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid token ID", nil)
	}

	if err := h.tokenService.Revoke(c.Request().Context(), userID, tokenID); err != nil {
		if errors.Is(err, domain.ErrAPITokenNotFound) {
			return NewNotFoundError(c, "API token not found")
		}
		log.Error().Err(err).Str("token_id", tokenID.String()).Msg("Failed to revoke API token")
		return NewInternalError(c, "Failed to revoke API token")
	}
	return c.NoContent(http.StatusNoContent)
}
