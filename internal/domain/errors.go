package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")

	// Chart of accounts
	ErrCategoryNotFound       = errors.New("account category not found")
	ErrSubcategoryNotFound    = errors.New("account subcategory not found in category")
	ErrCategoryHasAccounts    = errors.New("category still has accounts and cannot be deleted")
	ErrSubcategoryHasAccounts = errors.New("subcategory still has accounts and cannot be deleted")
	ErrCategoryAlreadyExists  = errors.New("account category already exists")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidNormalSide      = errors.New("normal side must be debit or credit")
	ErrInvalidStatementType   = errors.New("invalid statement type")
	ErrAccountNumberCollision = errors.New("account number already assigned")
	ErrAccountCreationFailed  = errors.New("account creation failed")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")

	// Journal
	ErrEmptyJournalEntry  = errors.New("journal entry has no lines")
	ErrLineBothSides      = errors.New("journal line has amounts on both sides")
	ErrLineNoAmount       = errors.New("journal line has no amount")
	ErrLineUnknownAccount = errors.New("journal line references unknown account")
	ErrJournalNotBalanced = errors.New("journal entry is not balanced")
	ErrEntryNotFound      = errors.New("journal entry not found")

	// API tokens
	ErrAPITokenNotFound = errors.New("API token not found")
	ErrTooManyAPITokens = errors.New("maximum number of API tokens reached")
)

// Validation constants
const (
	MaxAccountNameLength = 255
)

// errorCodes maps domain sentinels to the stable codes callers switch on.
// Handlers and the message catalog key off these, never off error text.
var errorCodes = map[error]string{
	ErrCategoryNotFound:       "ERR_CATEGORY_NOT_FOUND",
	ErrSubcategoryNotFound:    "ERR_SUBCATEGORY_NOT_FOUND",
	ErrCategoryHasAccounts:    "ERR_CANNOT_DELETE_CATEGORY_WITH_ACCOUNTS",
	ErrSubcategoryHasAccounts: "ERR_CANNOT_DELETE_SUBCATEGORY_WITH_ACCOUNTS",
	ErrAccountNotFound:        "ERR_ACCOUNT_NOT_FOUND",
	ErrInvalidNormalSide:      "ERR_INVALID_NORMAL_SIDE",
	ErrInvalidStatementType:   "ERR_INVALID_STATEMENT_TYPE",
	ErrAccountNumberCollision: "ERR_ACCOUNT_NUMBER_COLLISION",
	ErrAccountCreationFailed:  "ERR_ACCOUNT_CREATION_FAILED",
	ErrEmptyJournalEntry:      "ERR_EMPTY_JOURNAL_ENTRY",
	ErrLineBothSides:          "ERR_LINE_BOTH_SIDES",
	ErrLineNoAmount:           "ERR_LINE_NO_AMOUNT",
	ErrLineUnknownAccount:     "ERR_LINE_UNKNOWN_ACCOUNT",
	ErrJournalNotBalanced:     "ERR_JOURNAL_NOT_BALANCED",
}

// CodeOf returns the stable error code for a domain error, or ERR_INTERNAL
// for anything outside the enumerated set.
func CodeOf(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "ERR_INTERNAL"
}
