package service

import (
	"context"
	"strconv"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalService validates draft journal entries against the double-entry
// balance invariant and posts accepted entries atomically.
type JournalService struct {
	journalRepo    domain.JournalRepository
	accountRepo    domain.AccountRepository
	audit          *AuditService
	eventPublisher websocket.EventPublisher
}

// NewJournalService creates a new JournalService
func NewJournalService(journalRepo domain.JournalRepository, accountRepo domain.AccountRepository, audit *AuditService) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		audit:       audit,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *JournalService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ValidateLines checks a set of draft lines against the known active
// accounts. Amount totals are rounded to 2 decimal places before the
// balance comparison so float-derived inputs don't produce false rejects.
// Pure with respect to its inputs: nothing is persisted.
func ValidateLines(lines []domain.JournalLine, activeAccounts map[int32]bool) error {
	if len(lines) == 0 {
		return domain.ErrEmptyJournalEntry
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return domain.ErrInvalidInput
		}
		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()
		if hasDebit && hasCredit {
			return domain.ErrLineBothSides
		}
		if !hasDebit && !hasCredit {
			return domain.ErrLineNoAmount
		}
		if !activeAccounts[line.AccountID] {
			return domain.ErrLineUnknownAccount
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	totalDebit = totalDebit.Round(2)
	totalCredit = totalCredit.Round(2)
	if !totalDebit.Equal(totalCredit) {
		return &domain.UnbalancedError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return nil
}

// Validate checks a draft entry's lines against current persisted state.
func (s *JournalService) Validate(ctx context.Context, lines []domain.JournalLine) error {
	active, err := s.accountRepo.ActiveIDSet(ctx)
	if err != nil {
		return err
	}
	return ValidateLines(lines, active)
}

// PostEntryInput holds a draft journal entry ready for posting.
type PostEntryInput struct {
	EntryDate   time.Time
	Description string
	Lines       []domain.JournalLine
	CreatedBy   uuid.UUID
}

// PostEntry validates the draft and, if it passes, commits the entry with
// all its lines in one transaction. A rejected or failed entry leaves no
// rows behind.
func (s *JournalService) PostEntry(ctx context.Context, input PostEntryInput) (*domain.JournalEntry, error) {
	if err := s.Validate(ctx, input.Lines); err != nil {
		return nil, err
	}

	entry := &domain.JournalEntry{
		EntryDate:   input.EntryDate,
		Description: input.Description,
		Status:      domain.EntryStatusPosted,
		Lines:       input.Lines,
		CreatedBy:   input.CreatedBy,
	}

	created, err := s.journalRepo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.audit.Record(input.CreatedBy, "journal entry posted", map[string]string{
		"entry_id":   created.ID.String(),
		"line_count": strconv.Itoa(len(created.Lines)),
	}, "JournalService.PostEntry")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.JournalEntryPosted(created))
	}
	return created, nil
}

// GetEntry retrieves a posted entry with its lines and documents
func (s *JournalService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	return s.journalRepo.GetEntry(ctx, id)
}

// GetEntries retrieves entries within a date range
func (s *JournalService) GetEntries(ctx context.Context, from, to time.Time) ([]*domain.JournalEntry, error) {
	return s.journalRepo.GetEntries(ctx, from, to)
}
