package service

import (
	"context"
	"fmt"
	"testing"
)

func seedCandidate(name, category, subcategory string, orderKey int) SeedAccount {
	input := validInput(category, subcategory)
	input.Name = name
	return SeedAccount{Input: input, OrderKey: orderKey}
}

func TestAssignDisplayOrder_GappedForSmallGroups(t *testing.T) {
	group := make([]SeedAccount, 9)
	for i := range group {
		group[i] = seedCandidate(fmt.Sprintf("Account %d", i), "Assets", "Current Assets", 9-i)
	}

	AssignDisplayOrder(group, DefaultSeedOrdering())

	for i, c := range group {
		expected := int32(i*10 + 10)
		if c.Input.DisplayOrder != expected {
			t.Errorf("Expected display order %d at index %d, got %d", expected, i, c.Input.DisplayOrder)
		}
	}
	// Sorted by ordering key: the last-added candidate (key 1) comes first
	if group[0].Input.Name != "Account 8" {
		t.Errorf("Expected 'Account 8' first, got %s", group[0].Input.Name)
	}
}

func TestAssignDisplayOrder_DenseForLargeGroups(t *testing.T) {
	group := make([]SeedAccount, 10)
	for i := range group {
		group[i] = seedCandidate(fmt.Sprintf("Account %02d", i), "Assets", "Current Assets", i)
	}

	AssignDisplayOrder(group, DefaultSeedOrdering())

	for i, c := range group {
		expected := int32(i + 1)
		if c.Input.DisplayOrder != expected {
			t.Errorf("Expected dense display order %d at index %d, got %d", expected, i, c.Input.DisplayOrder)
		}
	}
}

func TestAssignDisplayOrder_TiesBrokenByName(t *testing.T) {
	group := []SeedAccount{
		seedCandidate("zebra", "Assets", "Current Assets", 1),
		seedCandidate("Apple", "Assets", "Current Assets", 1),
	}

	AssignDisplayOrder(group, DefaultSeedOrdering())

	if group[0].Input.Name != "Apple" {
		t.Errorf("Expected case-insensitive name tiebreak, got %s first", group[0].Input.Name)
	}
}

func TestAssignDisplayOrder_CustomConfig(t *testing.T) {
	group := []SeedAccount{
		seedCandidate("A", "Assets", "Current Assets", 1),
		seedCandidate("B", "Assets", "Current Assets", 2),
		seedCandidate("C", "Assets", "Current Assets", 3),
	}

	AssignDisplayOrder(group, SeedOrderingConfig{GapThreshold: 2, GapStep: 5})

	// Three members exceed a threshold of two, so numbering is dense
	for i, c := range group {
		if c.Input.DisplayOrder != int32(i+1) {
			t.Errorf("Expected dense order %d, got %d", i+1, c.Input.DisplayOrder)
		}
	}
}

func TestSeedAccounts_CreatesThroughRegistry(t *testing.T) {
	accountService, _, categoryRepo := newAccountFixture()
	categoryRepo.Seed("Assets", "10", "Current Assets", 1)
	categoryRepo.Seed("Revenue", "40", "Operating Revenue", 1)
	seedService := NewSeedService(accountService)

	candidates := []SeedAccount{
		seedCandidate("Cash", "Assets", "Current Assets", 2),
		seedCandidate("Accounts Receivable", "Assets", "Current Assets", 1),
		seedCandidate("Sales", "Revenue", "Operating Revenue", 1),
	}

	created, err := seedService.SeedAccounts(context.Background(), candidates)
	if err != nil {
		t.Fatalf("Expected seed to succeed, got %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(created))
	}

	// Within the Assets group the lower ordering key is created first, so it
	// gets the lower account number and the first display-order slot
	if created[0].Name != "Accounts Receivable" || created[0].AccountNumber != "100100" {
		t.Errorf("Expected 'Accounts Receivable' at 100100, got %s at %s", created[0].Name, created[0].AccountNumber)
	}
	if created[0].DisplayOrder != 10 {
		t.Errorf("Expected display order 10, got %d", created[0].DisplayOrder)
	}
	if created[1].Name != "Cash" || created[1].AccountNumber != "100101" {
		t.Errorf("Expected 'Cash' at 100101, got %s at %s", created[1].Name, created[1].AccountNumber)
	}
	if created[1].DisplayOrder != 20 {
		t.Errorf("Expected display order 20, got %d", created[1].DisplayOrder)
	}
	if created[2].AccountNumber != "400100" {
		t.Errorf("Expected revenue account at 400100, got %s", created[2].AccountNumber)
	}
}

func TestSeedAccounts_AbortsOnFirstError(t *testing.T) {
	accountService, _, categoryRepo := newAccountFixture()
	categoryRepo.Seed("Assets", "10", "Current Assets", 1)
	seedService := NewSeedService(accountService)

	candidates := []SeedAccount{
		seedCandidate("Cash", "Assets", "Current Assets", 1),
		seedCandidate("Lost", "Assets", "Missing Subcategory", 2),
	}

	created, err := seedService.SeedAccounts(context.Background(), candidates)
	if err == nil {
		t.Fatal("Expected seed to fail")
	}
	if len(created) != 1 {
		t.Errorf("Expected 1 account created before abort, got %d", len(created))
	}
}
