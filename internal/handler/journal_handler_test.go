package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/finledger/finledger-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type journalHandlerFixture struct {
	handler     *JournalHandler
	journalRepo *testutil.MockJournalRepository
	accountRepo *testutil.MockAccountRepository
}

func newJournalHandlerFixture() journalHandlerFixture {
	journalRepo := testutil.NewMockJournalRepository()
	accountRepo := testutil.NewMockAccountRepository()
	auditService := service.NewAuditService(testutil.NewMockAuditRepository())
	journalService := service.NewJournalService(journalRepo, accountRepo, auditService)
	documentService := service.NewDocumentService(testutil.NewMockDocumentStorage(), journalRepo)
	return journalHandlerFixture{
		handler:     NewJournalHandler(journalService, documentService, testCatalog()),
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

func (fx journalHandlerFixture) seedAccount(number string) *domain.Account {
	account, _ := fx.accountRepo.Create(context.Background(), &domain.Account{
		Name:          "Account " + number,
		AccountNumber: number,
		NormalSide:    domain.NormalSideDebit,
		IsActive:      true,
	})
	return account
}

func TestValidateEntry_Balanced(t *testing.T) {
	e := echo.New()
	fx := newJournalHandlerFixture()
	cash := fx.seedAccount("100100")
	revenue := fx.seedAccount("400100")

	reqBody := `{"lines": [
		{"accountId": ` + itoa(cash.ID) + `, "debit": "250.00"},
		{"accountId": ` + itoa(revenue.ID) + `, "credit": "250.00"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/validate", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fx.handler.ValidateEntry(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result ValidateResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !result.Valid {
		t.Error("Expected entry to be valid")
	}
	if result.TotalDebit != "250.00" || result.TotalCredit != "250.00" {
		t.Errorf("Expected totals 250.00/250.00, got %s/%s", result.TotalDebit, result.TotalCredit)
	}
}

func TestValidateEntry_Unbalanced_ReportsDifference(t *testing.T) {
	e := echo.New()
	fx := newJournalHandlerFixture()
	cash := fx.seedAccount("100100")
	revenue := fx.seedAccount("400100")

	reqBody := `{"lines": [
		{"accountId": ` + itoa(cash.ID) + `, "debit": "100.00"},
		{"accountId": ` + itoa(revenue.ID) + `, "credit": "99.99"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/validate", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fx.handler.ValidateEntry(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Code != "ERR_JOURNAL_NOT_BALANCED" {
		t.Errorf("Expected code ERR_JOURNAL_NOT_BALANCED, got %s", problem.Code)
	}
	if problem.Difference != "0.01" {
		t.Errorf("Expected difference '0.01', got %s", problem.Difference)
	}
}

func TestValidateEntry_Empty(t *testing.T) {
	e := echo.New()
	fx := newJournalHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/validate", strings.NewReader(`{"lines": []}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fx.handler.ValidateEntry(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Code != "ERR_EMPTY_JOURNAL_ENTRY" {
		t.Errorf("Expected code ERR_EMPTY_JOURNAL_ENTRY, got %s", problem.Code)
	}
}

func TestPostEntry_Success_Handler(t *testing.T) {
	e := echo.New()
	fx := newJournalHandlerFixture()
	cash := fx.seedAccount("100100")
	revenue := fx.seedAccount("400100")

	reqBody := `{"entryDate": "2026-03-15", "description": "Cash sale", "lines": [
		{"accountId": ` + itoa(cash.ID) + `, "debit": "250.00"},
		{"accountId": ` + itoa(revenue.ID) + `, "credit": "250.00"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/entries", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.PostEntry(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response JournalEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "posted" {
		t.Errorf("Expected status 'posted', got %s", response.Status)
	}
	if response.EntryDate != "2026-03-15" {
		t.Errorf("Expected entry date '2026-03-15', got %s", response.EntryDate)
	}
	if len(response.Lines) != 2 {
		t.Errorf("Expected 2 lines, got %d", len(response.Lines))
	}
	if len(fx.journalRepo.Entries) != 1 {
		t.Errorf("Expected 1 persisted entry, got %d", len(fx.journalRepo.Entries))
	}
}

func TestPostEntry_LineBothSides_Handler(t *testing.T) {
	e := echo.New()
	fx := newJournalHandlerFixture()
	cash := fx.seedAccount("100100")

	reqBody := `{"lines": [{"accountId": ` + itoa(cash.ID) + `, "debit": "50", "credit": "50"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/entries", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New())

	if err := fx.handler.PostEntry(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Code != "ERR_LINE_BOTH_SIDES" {
		t.Errorf("Expected code ERR_LINE_BOTH_SIDES, got %s", problem.Code)
	}
	if len(fx.journalRepo.Entries) != 0 {
		t.Errorf("Expected no persisted entries, got %d", len(fx.journalRepo.Entries))
	}
}

func itoa(id int32) string {
	return strconv.Itoa(int(id))
}
