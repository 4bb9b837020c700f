package handler

import (
	"net/http"
	"strconv"

	"github.com/finledger/finledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuditHandler exposes the audit log
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetRecent handles GET /api/v1/audit?limit=...
func (h *AuditHandler) GetRecent(c echo.Context) error {
	var limit int32
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Must be a positive integer"},
			})
		}
		limit = int32(parsed)
	}

	events, err := h.auditService.GetRecent(c.Request().Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit events")
		return NewInternalError(c, "Failed to get audit events")
	}
	return c.JSON(http.StatusOK, events)
}
