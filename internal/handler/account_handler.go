package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account registry HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
	seedService    *service.SeedService
	catalog        *messages.Catalog
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, seedService *service.SeedService, catalog *messages.Catalog) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		seedService:    seedService,
		catalog:        catalog,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	NormalSide     string `json:"normalSide"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	OpeningBalance string `json:"openingBalance,omitempty"`
	InitialBalance string `json:"initialBalance,omitempty"`
	StatementType  string `json:"statementType"`
	Comment        string `json:"comment,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int32  `json:"displayOrder,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// SetActiveRequest represents the activate/deactivate request body
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SeedAccountsRequest represents the bulk import request body
type SeedAccountsRequest struct {
	Accounts []SeedAccountEntry `json:"accounts"`
}

// SeedAccountEntry is one account candidate in a bulk import
type SeedAccountEntry struct {
	CreateAccountRequest
	OrderKey int `json:"orderKey"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             int32  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	NormalSide     string `json:"normalSide"`
	CategoryID     int32  `json:"categoryId"`
	SubcategoryID  int32  `json:"subcategoryId"`
	AccountNumber  string `json:"accountNumber"`
	OpeningBalance string `json:"openingBalance"`
	CurrentBalance string `json:"currentBalance"`
	TotalDebits    string `json:"totalDebits"`
	TotalCredits   string `json:"totalCredits"`
	DisplayOrder   int32  `json:"displayOrder"`
	StatementType  string `json:"statementType"`
	Comment        string `json:"comment,omitempty"`
	IsActive       bool   `json:"isActive"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, verr := h.toCreateInput(c, req, userID)
	if verr != nil {
		return verr
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), *input)
	if err != nil {
		if verr := nameValidationError(c, err); verr != nil {
			return verr
		}
		if code := domain.CodeOf(err); code != "ERR_INTERNAL" {
			return NewDomainError(c, h.catalog, err)
		}
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().
		Int32("account_id", account.ID).
		Str("account_number", account.AccountNumber).
		Str("name", account.Name).
		Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	includeInactive := c.QueryParam("includeInactive") == "true"

	accounts, err := h.accountService.GetAccounts(c.Request().Context(), includeInactive)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(c.Request().Context(), int32(id))
	if err != nil {
		return NewDomainError(c, h.catalog, err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// GetAccountByNumber handles GET /api/v1/accounts/by-number/:number
func (h *AccountHandler) GetAccountByNumber(c echo.Context) error {
	number := c.Param("number")
	if number == "" {
		return NewValidationError(c, "Account number required", nil)
	}

	account, err := h.accountService.GetAccountByNumber(c.Request().Context(), number)
	if err != nil {
		return NewDomainError(c, h.catalog, err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.UpdateAccount(c.Request().Context(), int32(id), userID, service.UpdateAccountInput{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		Comment:      req.Comment,
	})
	if err != nil {
		if verr := nameValidationError(c, err); verr != nil {
			return verr
		}
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int32("account_id", account.ID).Str("name", account.Name).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// SetAccountActive handles PATCH /api/v1/accounts/:id/active
func (h *AccountHandler) SetAccountActive(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.accountService.SetAccountActive(c.Request().Context(), int32(id), userID, req.Active); err != nil {
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int("account_id", id).Bool("active", req.Active).Msg("Account active flag changed")
	return c.NoContent(http.StatusNoContent)
}

// SeedAccounts handles POST /api/v1/accounts/seed
func (h *AccountHandler) SeedAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SeedAccountsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.Accounts) == 0 {
		return NewValidationError(c, "No accounts to seed", nil)
	}

	candidates := make([]service.SeedAccount, len(req.Accounts))
	for i, entry := range req.Accounts {
		input, verr := h.toCreateInput(c, entry.CreateAccountRequest, userID)
		if verr != nil {
			return verr
		}
		candidates[i] = service.SeedAccount{Input: *input, OrderKey: entry.OrderKey}
	}

	created, err := h.seedService.SeedAccounts(c.Request().Context(), candidates)
	if err != nil {
		if verr := nameValidationError(c, err); verr != nil {
			return verr
		}
		if code := domain.CodeOf(err); code != "ERR_INTERNAL" {
			return NewDomainError(c, h.catalog, err)
		}
		log.Error().Err(err).Int("created", len(created)).Msg("Seed aborted")
		return NewInternalError(c, "Failed to seed accounts")
	}

	log.Info().Int("count", len(created)).Msg("Accounts seeded")

	response := make([]AccountResponse, len(created))
	for i, account := range created {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusCreated, response)
}

// toCreateInput converts a request body to a service input, rejecting
// malformed decimal fields before they reach the registry.
func (h *AccountHandler) toCreateInput(c echo.Context, req CreateAccountRequest, userID uuid.UUID) (*service.CreateAccountInput, error) {
	openingBalance, err := parseAmount(req.OpeningBalance)
	if err != nil {
		return nil, NewValidationError(c, "Invalid opening balance", []ValidationError{
			{Field: "openingBalance", Message: "Must be a valid decimal number"},
		})
	}
	initialBalance, err := parseAmount(req.InitialBalance)
	if err != nil {
		return nil, NewValidationError(c, "Invalid initial balance", []ValidationError{
			{Field: "initialBalance", Message: "Must be a valid decimal number"},
		})
	}

	return &service.CreateAccountInput{
		OwnerUserID:     userID,
		Name:            req.Name,
		Description:     req.Description,
		NormalSide:      req.NormalSide,
		CategoryName:    req.Category,
		SubcategoryName: req.Subcategory,
		OpeningBalance:  openingBalance,
		InitialBalance:  initialBalance,
		StatementType:   req.StatementType,
		Comment:         req.Comment,
		CreatedBy:       userID,
	}, nil
}

// nameValidationError maps the account name sentinels to field errors, or
// returns nil for anything else
func nameValidationError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNameRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if errors.Is(err, domain.ErrNameTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	}
	return nil
}

// parseAmount parses an optional decimal string, defaulting to zero
func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:             account.ID,
		Name:           account.Name,
		Description:    account.Description,
		NormalSide:     string(account.NormalSide),
		CategoryID:     account.CategoryID,
		SubcategoryID:  account.SubcategoryID,
		AccountNumber:  account.AccountNumber,
		OpeningBalance: account.OpeningBalance.StringFixed(2),
		CurrentBalance: account.CurrentBalance.StringFixed(2),
		TotalDebits:    account.TotalDebits.StringFixed(2),
		TotalCredits:   account.TotalCredits.StringFixed(2),
		DisplayOrder:   account.DisplayOrder,
		StatementType:  string(account.StatementType),
		Comment:        account.Comment,
		IsActive:       account.IsActive,
		CreatedAt:      account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      account.UpdatedAt.Format(time.RFC3339),
	}
}
