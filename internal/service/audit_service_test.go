package service

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestAuditRecord_Asynchronous(t *testing.T) {
	repo := testutil.NewMockAuditRepository()
	auditService := NewAuditService(repo)

	auditService.Record(uuid.New(), "account created", map[string]string{"account_number": "100100"}, "test")

	deadline := time.Now().Add(time.Second)
	for {
		events, err := repo.GetRecent(context.Background(), 10)
		if err != nil {
			t.Fatalf("GetRecent failed: %v", err)
		}
		if len(events) == 1 {
			if events[0].Event != "account created" {
				t.Errorf("Expected event 'account created', got %s", events[0].Event)
			}
			if events[0].Context["account_number"] != "100100" {
				t.Errorf("Expected context account_number '100100', got %s", events[0].Context["account_number"])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Audit event was never recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAuditRecord_NilServiceSafe(t *testing.T) {
	var auditService *AuditService

	// Services treat audit as optional; a nil service must not panic
	auditService.Record(uuid.New(), "noop", nil, "test")
}

func TestAuditGetRecent_ClampsLimit(t *testing.T) {
	repo := testutil.NewMockAuditRepository()
	auditService := NewAuditService(repo)

	for i := 0; i < 3; i++ {
		event := &domain.AuditEvent{Event: "event", ActorID: uuid.New(), Location: "test"}
		if err := repo.Record(context.Background(), event); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	events, err := auditService.GetRecent(context.Background(), -5)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("Expected 3 events with defaulted limit, got %d", len(events))
	}
}
