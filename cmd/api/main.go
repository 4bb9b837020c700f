package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finledger/finledger-backend/internal/config"
	"github.com/finledger/finledger-backend/internal/handler"
	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/repository/postgres"
	"github.com/finledger/finledger-backend/internal/repository/storage"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/finledger/finledger-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	categoryRepo := postgres.NewCategoryRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	tokenRepo := postgres.NewAPITokenRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool, messages.DefaultMessages)

	// Document storage is optional: without S3 credentials uploads are
	// rejected but everything else works
	var documentStorage storage.DocumentRepository
	if cfg.S3.AccessKeyID != "" {
		s3Repo, err := storage.NewS3DocumentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize document storage")
		}
		documentStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Document storage enabled")
	} else {
		log.Warn().Msg("Document storage disabled: no S3 credentials configured")
	}

	// Message catalog with TTL cache over the database-backed overrides
	catalog := messages.New(messageRepo.Load, cfg.CatalogTTL)

	// Initialize services
	auditService := service.NewAuditService(auditRepo)
	accountService := service.NewAccountService(accountRepo, categoryRepo, auditService)
	accountService.SetCreateRetries(cfg.CreateRetries)
	categoryService := service.NewCategoryService(categoryRepo, auditService)
	journalService := service.NewJournalService(journalRepo, accountRepo, auditService)
	documentService := service.NewDocumentService(documentStorage, journalRepo)
	seedService := service.NewSeedService(accountService)
	tokenService := service.NewAPITokenService(tokenRepo)

	// WebSocket hub for the live event feed
	hub := websocket.NewHub()
	accountService.SetEventPublisher(hub)
	categoryService.SetEventPublisher(hub)
	journalService.SetEventPublisher(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, seedService, catalog)
	categoryHandler := handler.NewCategoryHandler(categoryService, catalog)
	journalHandler := handler.NewJournalHandler(journalService, documentService, catalog)
	auditHandler := handler.NewAuditHandler(auditService)
	tokenHandler := handler.NewAPITokenHandler(tokenService)
	wsHandler := handler.NewWebSocketHandler(hub, tokenService, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, accountHandler, categoryHandler, journalHandler, auditHandler, tokenHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
