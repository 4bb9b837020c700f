package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/finledger/finledger-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// setupAuthContext injects an authenticated user into the request context
// the way the auth middleware does
func setupAuthContext(c echo.Context, userID uuid.UUID) {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.APITokenIDKey, uuid.New())
	c.SetRequest(c.Request().WithContext(ctx))
}

func testCatalog() *messages.Catalog {
	return messages.New(messages.StaticLoader(messages.DefaultMessages), time.Minute)
}

type accountHandlerFixture struct {
	handler      *AccountHandler
	accountRepo  *testutil.MockAccountRepository
	categoryRepo *testutil.MockCategoryRepository
}

func newAccountHandlerFixture() accountHandlerFixture {
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.Accounts = accountRepo
	auditService := service.NewAuditService(testutil.NewMockAuditRepository())
	accountService := service.NewAccountService(accountRepo, categoryRepo, auditService)
	seedService := service.NewSeedService(accountService)
	return accountHandlerFixture{
		handler:      NewAccountHandler(accountService, seedService, testCatalog()),
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
	}
}

func TestCreateAccount_Success_Handler(t *testing.T) {
	e := echo.New()
	fx := newAccountHandlerFixture()
	fx.categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	reqBody := `{"name": "Cash", "normalSide": "Debit", "category": "Assets", "subcategory": "Current Assets", "initialBalance": "1000.50", "statementType": "Balance Sheet"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.AccountNumber != "100100" {
		t.Errorf("Expected account number '100100', got %s", response.AccountNumber)
	}
	if response.NormalSide != "debit" {
		t.Errorf("Expected normal side 'debit', got %s", response.NormalSide)
	}
	if response.CurrentBalance != "1000.50" {
		t.Errorf("Expected current balance '1000.50', got %s", response.CurrentBalance)
	}
}

func TestCreateAccount_InvalidNormalSide_Handler(t *testing.T) {
	e := echo.New()
	fx := newAccountHandlerFixture()
	fx.categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	reqBody := `{"name": "Cash", "normalSide": "sideways", "category": "Assets", "subcategory": "Current Assets", "statementType": "Balance Sheet"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Code != "ERR_INVALID_NORMAL_SIDE" {
		t.Errorf("Expected code ERR_INVALID_NORMAL_SIDE, got %s", problem.Code)
	}
	if problem.Detail != messages.DefaultMessages["ERR_INVALID_NORMAL_SIDE"] {
		t.Errorf("Expected catalog message, got %s", problem.Detail)
	}
}

func TestCreateAccount_UnknownCategory_Handler(t *testing.T) {
	e := echo.New()
	fx := newAccountHandlerFixture()

	reqBody := `{"name": "Cash", "normalSide": "debit", "category": "Ghosts", "subcategory": "None", "statementType": "Balance Sheet"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Code != "ERR_CATEGORY_NOT_FOUND" {
		t.Errorf("Expected code ERR_CATEGORY_NOT_FOUND, got %s", problem.Code)
	}
}

func TestCreateAccount_Unauthenticated(t *testing.T) {
	e := echo.New()
	fx := newAccountHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fx.handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestSeedAccounts_Handler(t *testing.T) {
	e := echo.New()
	fx := newAccountHandlerFixture()
	fx.categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	reqBody := `{"accounts": [
		{"name": "Cash", "normalSide": "debit", "category": "Assets", "subcategory": "Current Assets", "statementType": "Balance Sheet", "orderKey": 2},
		{"name": "Accounts Receivable", "normalSide": "debit", "category": "Assets", "subcategory": "Current Assets", "statementType": "Balance Sheet", "orderKey": 1}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/seed", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.SeedAccounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response []AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(response))
	}
	if response[0].Name != "Accounts Receivable" || response[0].DisplayOrder != 10 {
		t.Errorf("Expected 'Accounts Receivable' first with order 10, got %s order %d", response[0].Name, response[0].DisplayOrder)
	}
}
