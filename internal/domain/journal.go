package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "draft"
	EntryStatusPosted EntryStatus = "posted"
)

// JournalLine is one side of a double-entry posting. Exactly one of Debit
// and Credit is non-zero on a valid line.
type JournalLine struct {
	ID        int32           `json:"id"`
	EntryID   uuid.UUID       `json:"entryId"`
	AccountID int32           `json:"accountId"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Note      string          `json:"note"`
}

// JournalEntry groups lines that must balance. Lines are committed
// atomically with the entry; partial persistence is never allowed.
type JournalEntry struct {
	ID          uuid.UUID     `json:"id"`
	EntryDate   time.Time     `json:"entryDate"`
	Description string        `json:"description"`
	Status      EntryStatus   `json:"status"`
	Lines       []JournalLine `json:"lines"`
	Documents   []Document    `json:"documents,omitempty"`
	CreatedBy   uuid.UUID     `json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Document is a supporting file attached to a journal entry, stored in
// object storage under ObjectKey.
type Document struct {
	ID           uuid.UUID `json:"id"`
	EntryID      uuid.UUID `json:"entryId"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	ObjectKey    string    `json:"objectKey"`
	ThumbnailKey string    `json:"thumbnailKey,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// UnbalancedError reports the signed debit-minus-credit difference of a
// journal entry that failed the balance check. It unwraps to
// ErrJournalNotBalanced so callers can match with errors.Is.
type UnbalancedError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("journal entry is not balanced: debits %s, credits %s, difference %s",
		e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), e.Difference().StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error { return ErrJournalNotBalanced }

// Difference returns totalDebit - totalCredit.
func (e *UnbalancedError) Difference() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit)
}

type JournalRepository interface {
	// CreateEntry persists the entry and all its lines in a single
	// transaction and applies each line's amounts to the referenced
	// account's running totals. Nothing is written if any step fails.
	CreateEntry(ctx context.Context, entry *JournalEntry) (*JournalEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*JournalEntry, error)
	GetEntries(ctx context.Context, from, to time.Time) ([]*JournalEntry, error)
	AttachDocument(ctx context.Context, doc *Document) (*Document, error)
	GetDocuments(ctx context.Context, entryID uuid.UUID) ([]*Document, error)
}
