package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultCreateRetries bounds how often account creation is retried after a
// lost sequence race before giving up.
const DefaultCreateRetries = 3

// AccountService is the account registry: it validates candidate accounts
// and assigns each new account a unique, ordered account number.
type AccountService struct {
	accountRepo    domain.AccountRepository
	categoryRepo   domain.CategoryRepository
	audit          *AuditService
	eventPublisher websocket.EventPublisher
	createRetries  int
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, categoryRepo domain.CategoryRepository, audit *AuditService) *AccountService {
	return &AccountService{
		accountRepo:   accountRepo,
		categoryRepo:  categoryRepo,
		audit:         audit,
		createRetries: DefaultCreateRetries,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AccountService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCreateRetries overrides the bounded retry count for sequence races
func (s *AccountService) SetCreateRetries(n int) {
	if n > 0 {
		s.createRetries = n
	}
}

// CreateAccountInput holds the raw input for creating an account. NormalSide
// and StatementType arrive as free text from the caller and are validated
// against the closed enumerations.
type CreateAccountInput struct {
	OwnerUserID     uuid.UUID
	Name            string
	Description     string
	NormalSide      string
	CategoryName    string
	SubcategoryName string
	OpeningBalance  decimal.Decimal
	InitialBalance  decimal.Decimal
	TotalDebits     decimal.Decimal
	TotalCredits    decimal.Decimal
	DisplayOrder    int32
	StatementType   string
	Comment         string
	CreatedBy       uuid.UUID
}

// GroupKey composes the code that scopes account-number sequences: the
// category's number prefix followed by the subcategory's order index,
// zero-padded to two digits ("10" + 1 -> "1001").
func GroupKey(numberPrefix string, orderIndex int32) string {
	return fmt.Sprintf("%s%02d", numberPrefix, orderIndex)
}

// FormatAccountNumber appends the two-digit sequence suffix to a group key.
// The first account in a group gets suffix "00".
func FormatAccountNumber(groupKey string, sequence int32) string {
	return fmt.Sprintf("%s%02d", groupKey, sequence)
}

// CreateAccount validates the candidate account and creates it with a newly
// assigned account number. If another creation claims the same number first,
// the sequence is recomputed and the insert retried a bounded number of
// times before the operation fails with ErrAccountCreationFailed.
func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}

	normalSide, err := domain.ParseNormalSide(input.NormalSide)
	if err != nil {
		return nil, err
	}

	statementType, err := domain.ParseStatementType(input.StatementType)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByName(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}

	subcategory, err := s.categoryRepo.GetSubcategoryByName(ctx, category.ID, input.SubcategoryName)
	if err != nil {
		return nil, err
	}

	groupKey := GroupKey(category.NumberPrefix, subcategory.OrderIndex)

	var created *domain.Account
	for attempt := 0; attempt < s.createRetries; attempt++ {
		seq, err := s.accountRepo.NextSequence(ctx, groupKey)
		if err != nil {
			return nil, err
		}

		account := &domain.Account{
			OwnerUserID:    input.OwnerUserID,
			Name:           name,
			Description:    input.Description,
			NormalSide:     normalSide,
			CategoryID:     category.ID,
			SubcategoryID:  subcategory.ID,
			AccountNumber:  FormatAccountNumber(groupKey, seq),
			OpeningBalance: input.OpeningBalance,
			CurrentBalance: input.InitialBalance,
			TotalDebits:    input.TotalDebits,
			TotalCredits:   input.TotalCredits,
			DisplayOrder:   input.DisplayOrder,
			StatementType:  statementType,
			Comment:        input.Comment,
			IsActive:       true,
			CreatedBy:      input.CreatedBy,
		}

		created, err = s.accountRepo.Create(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAccountNumberCollision) {
			return nil, err
		}
		log.Warn().
			Str("group_key", groupKey).
			Str("account_number", account.AccountNumber).
			Int("attempt", attempt+1).
			Msg("Account number collision, retrying with fresh sequence")
	}
	if created == nil {
		return nil, domain.ErrAccountCreationFailed
	}

	s.audit.Record(input.CreatedBy, "account created", map[string]string{
		"account_number": created.AccountNumber,
		"name":           created.Name,
		"category":       category.Name,
		"subcategory":    subcategory.Name,
	}, "AccountService.CreateAccount")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AccountCreated(created))
	}

	return created, nil
}

// GetAccounts retrieves all accounts, ordered by account number
func (s *AccountService) GetAccounts(ctx context.Context, includeInactive bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAll(ctx, includeInactive)
}

// GetAccountByID retrieves a single account
func (s *AccountService) GetAccountByID(ctx context.Context, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetAccountByNumber retrieves a single account by its unique number
func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return s.accountRepo.GetByNumber(ctx, number)
}

// UpdateAccountInput holds the editable account fields. The account number,
// normal side, statement type and group assignment are immutable.
type UpdateAccountInput struct {
	Name         string
	Description  string
	DisplayOrder int32
	Comment      string
}

// UpdateAccount updates an account's descriptive fields
func (s *AccountService) UpdateAccount(ctx context.Context, id int32, actorID uuid.UUID, input UpdateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}

	existing, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Description = input.Description
	existing.DisplayOrder = input.DisplayOrder
	existing.Comment = input.Comment

	updated, err := s.accountRepo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, "account updated", map[string]string{
		"account_number": updated.AccountNumber,
		"name":           updated.Name,
	}, "AccountService.UpdateAccount")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AccountUpdated(updated))
	}
	return updated, nil
}

// SetAccountActive activates or deactivates an account
func (s *AccountService) SetAccountActive(ctx context.Context, id int32, actorID uuid.UUID, active bool) error {
	if err := s.accountRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.audit.Record(actorID, "account active flag changed", map[string]string{
		"account_id": fmt.Sprintf("%d", id),
		"active":     fmt.Sprintf("%t", active),
	}, "AccountService.SetAccountActive")

	if s.eventPublisher != nil && !active {
		s.eventPublisher.Publish(websocket.AccountDeactivated(id))
	}
	return nil
}
