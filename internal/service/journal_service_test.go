package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateLines_EmptyEntry(t *testing.T) {
	err := ValidateLines(nil, map[int32]bool{})
	if !errors.Is(err, domain.ErrEmptyJournalEntry) {
		t.Fatalf("Expected ErrEmptyJournalEntry, got %v", err)
	}
}

func TestValidateLines_BothSides(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("50"), Credit: amount("50")},
	}
	err := ValidateLines(lines, map[int32]bool{1: true})
	if !errors.Is(err, domain.ErrLineBothSides) {
		t.Fatalf("Expected ErrLineBothSides, got %v", err)
	}
}

func TestValidateLines_NoAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("50")},
		{AccountID: 2},
	}
	err := ValidateLines(lines, map[int32]bool{1: true, 2: true})
	if !errors.Is(err, domain.ErrLineNoAmount) {
		t.Fatalf("Expected ErrLineNoAmount, got %v", err)
	}
}

func TestValidateLines_UnknownAccount(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("50")},
		{AccountID: 99, Credit: amount("50")},
	}
	err := ValidateLines(lines, map[int32]bool{1: true})
	if !errors.Is(err, domain.ErrLineUnknownAccount) {
		t.Fatalf("Expected ErrLineUnknownAccount, got %v", err)
	}
}

func TestValidateLines_NegativeAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("-50")},
		{AccountID: 2, Credit: amount("-50")},
	}
	err := ValidateLines(lines, map[int32]bool{1: true, 2: true})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateLines_Balanced(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("100")},
		{AccountID: 2, Credit: amount("60")},
		{AccountID: 3, Credit: amount("40")},
	}
	if err := ValidateLines(lines, map[int32]bool{1: true, 2: true, 3: true}); err != nil {
		t.Fatalf("Expected balanced entry to pass, got %v", err)
	}
}

func TestValidateLines_Unbalanced_ReportsDifference(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("100")},
		{AccountID: 2, Credit: amount("99.99")},
	}
	err := ValidateLines(lines, map[int32]bool{1: true, 2: true})
	if !errors.Is(err, domain.ErrJournalNotBalanced) {
		t.Fatalf("Expected ErrJournalNotBalanced, got %v", err)
	}

	var unbalanced *domain.UnbalancedError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("Expected UnbalancedError, got %T", err)
	}
	if unbalanced.Difference().StringFixed(2) != "0.01" {
		t.Errorf("Expected difference 0.01, got %s", unbalanced.Difference().StringFixed(2))
	}
	if domain.CodeOf(err) != "ERR_JOURNAL_NOT_BALANCED" {
		t.Errorf("Expected code ERR_JOURNAL_NOT_BALANCED, got %s", domain.CodeOf(err))
	}
}

func TestValidateLines_RoundsBeforeComparing(t *testing.T) {
	// 0.004 under the credit total rounds away at 2 decimal places
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("33.333")},
		{AccountID: 2, Debit: amount("66.667")},
		{AccountID: 3, Credit: amount("100.004")},
	}
	if err := ValidateLines(lines, map[int32]bool{1: true, 2: true, 3: true}); err != nil {
		t.Fatalf("Expected rounded totals to balance, got %v", err)
	}
}

func TestValidateLines_ValidationIdempotent(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: 1, Debit: amount("100")},
		{AccountID: 2, Credit: amount("100")},
	}
	active := map[int32]bool{1: true, 2: true}
	for i := 0; i < 3; i++ {
		if err := ValidateLines(lines, active); err != nil {
			t.Fatalf("Validation run %d changed outcome: %v", i, err)
		}
	}
}

func newJournalFixture() (*JournalService, *testutil.MockJournalRepository, *testutil.MockAccountRepository) {
	journalRepo := testutil.NewMockJournalRepository()
	accountRepo := testutil.NewMockAccountRepository()
	auditService := NewAuditService(testutil.NewMockAuditRepository())
	return NewJournalService(journalRepo, accountRepo, auditService), journalRepo, accountRepo
}

func seedAccount(accountRepo *testutil.MockAccountRepository, number string) *domain.Account {
	account, _ := accountRepo.Create(context.Background(), &domain.Account{
		Name:          "Account " + number,
		AccountNumber: number,
		NormalSide:    domain.NormalSideDebit,
		IsActive:      true,
	})
	return account
}

func TestPostEntry_Success(t *testing.T) {
	journalService, journalRepo, accountRepo := newJournalFixture()
	cash := seedAccount(accountRepo, "100100")
	revenue := seedAccount(accountRepo, "400100")

	entry, err := journalService.PostEntry(context.Background(), PostEntryInput{
		EntryDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines: []domain.JournalLine{
			{AccountID: cash.ID, Debit: amount("250")},
			{AccountID: revenue.ID, Credit: amount("250")},
		},
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Expected post to succeed, got %v", err)
	}
	if entry.Status != domain.EntryStatusPosted {
		t.Errorf("Expected status 'posted', got %s", entry.Status)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(entry.Lines))
	}

	stored, err := journalRepo.GetEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("Expected entry to be persisted, got %v", err)
	}
	if stored.Description != "Cash sale" {
		t.Errorf("Expected description 'Cash sale', got %s", stored.Description)
	}
}

func TestPostEntry_RejectedEntryLeavesNothing(t *testing.T) {
	journalService, journalRepo, accountRepo := newJournalFixture()
	cash := seedAccount(accountRepo, "100100")

	_, err := journalService.PostEntry(context.Background(), PostEntryInput{
		EntryDate: time.Now(),
		Lines: []domain.JournalLine{
			{AccountID: cash.ID, Debit: amount("100")},
		},
		CreatedBy: uuid.New(),
	})
	if !errors.Is(err, domain.ErrJournalNotBalanced) {
		t.Fatalf("Expected ErrJournalNotBalanced, got %v", err)
	}
	if len(journalRepo.Entries) != 0 {
		t.Errorf("Expected no persisted entries, got %d", len(journalRepo.Entries))
	}
}

func TestPostEntry_InactiveAccountRejected(t *testing.T) {
	journalService, _, accountRepo := newJournalFixture()
	cash := seedAccount(accountRepo, "100100")
	dormant := seedAccount(accountRepo, "100101")
	if err := accountRepo.SetActive(context.Background(), dormant.ID, false); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	_, err := journalService.PostEntry(context.Background(), PostEntryInput{
		EntryDate: time.Now(),
		Lines: []domain.JournalLine{
			{AccountID: cash.ID, Debit: amount("100")},
			{AccountID: dormant.ID, Credit: amount("100")},
		},
		CreatedBy: uuid.New(),
	})
	if !errors.Is(err, domain.ErrLineUnknownAccount) {
		t.Fatalf("Expected ErrLineUnknownAccount, got %v", err)
	}
}
