package handler

import (
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. Rate limiting keys on the
// authenticated token, so it runs after authentication on every group.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, accountHandler *AccountHandler, categoryHandler *CategoryHandler, journalHandler *JournalHandler, auditHandler *AuditHandler, tokenHandler *APITokenHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Account registry routes (protected)
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.POST("/seed", accountHandler.SeedAccounts)
	accounts.GET("/by-number/:number", accountHandler.GetAccountByNumber)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.PATCH("/:id/active", accountHandler.SetAccountActive)

	// Chart structure routes (protected)
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubcategory)
	categories.GET("/:id/subcategories", categoryHandler.GetSubcategories)

	subcategories := api.Group("/subcategories")
	subcategories.DELETE("/:id", categoryHandler.DeleteSubcategory)

	// Journal routes (protected)
	journal := api.Group("/journal")
	journal.POST("/validate", journalHandler.ValidateEntry)
	journal.POST("/entries", journalHandler.PostEntry)
	journal.GET("/entries", journalHandler.GetEntries)
	journal.GET("/entries/:id", journalHandler.GetEntry)
	journal.POST("/entries/:id/documents", journalHandler.AttachDocument)
	journal.GET("/entries/:id/documents", journalHandler.GetDocuments)

	// Audit log routes (protected)
	audit := api.Group("/audit")
	audit.GET("", auditHandler.GetRecent)

	// API token management routes (protected)
	tokens := api.Group("/tokens")
	tokens.POST("", tokenHandler.Create)
	tokens.GET("", tokenHandler.List)
	tokens.DELETE("/:id", tokenHandler.Revoke)

	// WebSocket event feed (token authenticated via query param)
	e.GET("/ws", wsHandler.HandleWS)
}
