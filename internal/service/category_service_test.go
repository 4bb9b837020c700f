package service

import (
	"context"
	"errors"
	"testing"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/testutil"
	"github.com/google/uuid"
)

func newCategoryFixture() (*CategoryService, *AccountService, *testutil.MockCategoryRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.Accounts = accountRepo
	auditService := NewAuditService(testutil.NewMockAuditRepository())
	accountService := NewAccountService(accountRepo, categoryRepo, auditService)
	return NewCategoryService(categoryRepo, auditService), accountService, categoryRepo
}

func TestCreateCategory_Success(t *testing.T) {
	categoryService, _, _ := newCategoryFixture()

	category, err := categoryService.CreateCategory(context.Background(), uuid.New(), "Assets", "10", "Things we own")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Name != "Assets" {
		t.Errorf("Expected name 'Assets', got %s", category.Name)
	}
	if category.NumberPrefix != "10" {
		t.Errorf("Expected prefix '10', got %s", category.NumberPrefix)
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	categoryService, _, _ := newCategoryFixture()

	_, err := categoryService.CreateCategory(context.Background(), uuid.New(), "  ", "10", "")
	if !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("Expected ErrNameRequired, got %v", err)
	}
}

func TestDeleteCategory_Empty(t *testing.T) {
	categoryService, _, categoryRepo := newCategoryFixture()
	cat, _ := categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	if err := categoryService.DeleteCategory(context.Background(), uuid.New(), cat.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if _, err := categoryRepo.GetByID(context.Background(), cat.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Error("Expected category to be gone")
	}
}

func TestDeleteCategory_BlockedByAccounts(t *testing.T) {
	categoryService, accountService, categoryRepo := newCategoryFixture()
	cat, _ := categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	if _, err := accountService.CreateAccount(context.Background(), validInput("Assets", "Current Assets")); err != nil {
		t.Fatalf("Setup create failed: %v", err)
	}

	err := categoryService.DeleteCategory(context.Background(), uuid.New(), cat.ID)
	if !errors.Is(err, domain.ErrCategoryHasAccounts) {
		t.Fatalf("Expected ErrCategoryHasAccounts, got %v", err)
	}
	if domain.CodeOf(err) != "ERR_CANNOT_DELETE_CATEGORY_WITH_ACCOUNTS" {
		t.Errorf("Expected code ERR_CANNOT_DELETE_CATEGORY_WITH_ACCOUNTS, got %s", domain.CodeOf(err))
	}
	if _, err := categoryRepo.GetByID(context.Background(), cat.ID); err != nil {
		t.Error("Expected category to survive the blocked delete")
	}
}

func TestDeleteCategory_BlockedByInactiveAccounts(t *testing.T) {
	categoryService, accountService, categoryRepo := newCategoryFixture()
	cat, _ := categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	account, err := accountService.CreateAccount(context.Background(), validInput("Assets", "Current Assets"))
	if err != nil {
		t.Fatalf("Setup create failed: %v", err)
	}
	if err := accountService.SetAccountActive(context.Background(), account.ID, uuid.New(), false); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	// Deactivated accounts still block deletion
	err = categoryService.DeleteCategory(context.Background(), uuid.New(), cat.ID)
	if !errors.Is(err, domain.ErrCategoryHasAccounts) {
		t.Fatalf("Expected ErrCategoryHasAccounts, got %v", err)
	}
}

func TestCreateSubcategory_CategoryNotFound(t *testing.T) {
	categoryService, _, _ := newCategoryFixture()

	_, err := categoryService.CreateSubcategory(context.Background(), uuid.New(), 42, "Current Assets", 1)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestDeleteSubcategory_BlockedByAccounts(t *testing.T) {
	categoryService, accountService, categoryRepo := newCategoryFixture()
	_, sub := categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	if _, err := accountService.CreateAccount(context.Background(), validInput("Assets", "Current Assets")); err != nil {
		t.Fatalf("Setup create failed: %v", err)
	}

	err := categoryService.DeleteSubcategory(context.Background(), uuid.New(), sub.ID)
	if !errors.Is(err, domain.ErrSubcategoryHasAccounts) {
		t.Fatalf("Expected ErrSubcategoryHasAccounts, got %v", err)
	}
}

func TestDeleteSubcategory_Empty(t *testing.T) {
	categoryService, _, categoryRepo := newCategoryFixture()
	_, sub := categoryRepo.Seed("Assets", "10", "Current Assets", 1)

	if err := categoryService.DeleteSubcategory(context.Background(), uuid.New(), sub.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
}
