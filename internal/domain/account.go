package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NormalSide string
type StatementType string

const (
	NormalSideDebit  NormalSide = "debit"
	NormalSideCredit NormalSide = "credit"
)

const (
	StatementBalanceSheet     StatementType = "Balance Sheet"
	StatementIncome           StatementType = "Income Statement"
	StatementRetainedEarnings StatementType = "Retained Earnings Statement"
)

// ParseNormalSide normalizes a raw normal-side value (case-insensitive) or
// fails with ErrInvalidNormalSide.
func ParseNormalSide(raw string) (NormalSide, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(NormalSideDebit):
		return NormalSideDebit, nil
	case string(NormalSideCredit):
		return NormalSideCredit, nil
	default:
		return "", ErrInvalidNormalSide
	}
}

// ParseStatementType validates a statement type against the closed set.
func ParseStatementType(raw string) (StatementType, error) {
	switch StatementType(strings.TrimSpace(raw)) {
	case StatementBalanceSheet, StatementIncome, StatementRetainedEarnings:
		return StatementType(strings.TrimSpace(raw)), nil
	default:
		return "", ErrInvalidStatementType
	}
}

// Account is a ledger account in the chart of accounts. AccountNumber is
// derived at creation time and never changes afterwards.
type Account struct {
	ID             int32           `json:"id"`
	OwnerUserID    uuid.UUID       `json:"ownerUserId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	NormalSide     NormalSide      `json:"normalSide"`
	CategoryID     int32           `json:"categoryId"`
	SubcategoryID  int32           `json:"subcategoryId"`
	AccountNumber  string          `json:"accountNumber"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
	DisplayOrder   int32           `json:"displayOrder"`
	StatementType  StatementType   `json:"statementType"`
	Comment        string          `json:"comment"`
	IsActive       bool            `json:"isActive"`
	CreatedBy      uuid.UUID       `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type AccountRepository interface {
	// Create inserts the account. The unique index on account_number rejects
	// a stale sequence with ErrAccountNumberCollision.
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id int32) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	GetAll(ctx context.Context, includeInactive bool) ([]*Account, error)
	GetByGroup(ctx context.Context, categoryID, subcategoryID int32) ([]*Account, error)
	// NextSequence atomically claims the next per-group sequence value for
	// the given group key, starting at 0 for a fresh group.
	NextSequence(ctx context.Context, groupKey string) (int32, error)
	Update(ctx context.Context, account *Account) (*Account, error)
	SetActive(ctx context.Context, id int32, active bool) error
	// ActiveIDSet returns the IDs of all active accounts, used by the journal
	// validator to check line references.
	ActiveIDSet(ctx context.Context) (map[int32]bool, error)
}
