package postgres

import (
	"context"
	"fmt"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, owner_user_id, name, description, normal_side,
	category_id, subcategory_id, account_number, opening_balance,
	current_balance, total_debits, total_credits, display_order,
	statement_type, comment, is_active, created_by, created_at, updated_at`

// NextSequence atomically claims the next sequence value for a group key.
// A dedicated counter row per group avoids the lost-update race of deriving
// MAX(sequence)+1 from existing account rows.
func (r *AccountRepository) NextSequence(ctx context.Context, groupKey string) (int32, error) {
	var seq int32
	err := r.pool.QueryRow(ctx, `
		INSERT INTO account_number_sequences (group_key, seq)
		VALUES ($1, 0)
		ON CONFLICT (group_key) DO UPDATE SET seq = account_number_sequences.seq + 1
		RETURNING seq`, groupKey).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Create inserts a new account row
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	openingBalance, err := decimalToPgNumeric(account.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid opening balance: %w", err)
	}
	currentBalance, err := decimalToPgNumeric(account.CurrentBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid current balance: %w", err)
	}
	totalDebits, err := decimalToPgNumeric(account.TotalDebits)
	if err != nil {
		return nil, fmt.Errorf("invalid total debits: %w", err)
	}
	totalCredits, err := decimalToPgNumeric(account.TotalCredits)
	if err != nil {
		return nil, fmt.Errorf("invalid total credits: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (owner_user_id, name, description, normal_side,
			category_id, subcategory_id, account_number, opening_balance,
			current_balance, total_debits, total_credits, display_order,
			statement_type, comment, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+accountColumns,
		account.OwnerUserID, account.Name, account.Description, string(account.NormalSide),
		account.CategoryID, account.SubcategoryID, account.AccountNumber, openingBalance,
		currentBalance, totalDebits, totalCredits, account.DisplayOrder,
		string(account.StatementType), account.Comment, account.IsActive, account.CreatedBy)

	created, err := scanAccount(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrAccountNumberCollision
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccountNotFound(row)
}

// GetByNumber retrieves an account by its unique account number
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
	return scanAccountNotFound(row)
}

// GetAll retrieves all accounts ordered by account number
func (r *AccountRepository) GetAll(ctx context.Context, includeInactive bool) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY account_number`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// GetByGroup retrieves all accounts in a (category, subcategory) group
func (r *AccountRepository) GetByGroup(ctx context.Context, categoryID, subcategoryID int32) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE category_id = $1 AND subcategory_id = $2
		ORDER BY account_number`, categoryID, subcategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// Update updates an account's descriptive fields. The account number is
// immutable and deliberately not part of the statement.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $2, description = $3, display_order = $4, comment = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		account.ID, account.Name, account.Description, account.DisplayOrder, account.Comment)
	return scanAccountNotFound(row)
}

// SetActive activates or deactivates an account
func (r *AccountRepository) SetActive(ctx context.Context, id int32, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ActiveIDSet returns the set of active account IDs
func (r *AccountRepository) ActiveIDSet(ctx context.Context) (map[int32]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM accounts WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int32]bool)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var normalSide, statementType string
	var opening, current, debits, credits pgtype.Numeric
	err := row.Scan(&a.ID, &a.OwnerUserID, &a.Name, &a.Description, &normalSide,
		&a.CategoryID, &a.SubcategoryID, &a.AccountNumber, &opening,
		&current, &debits, &credits, &a.DisplayOrder,
		&statementType, &a.Comment, &a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.NormalSide = domain.NormalSide(normalSide)
	a.StatementType = domain.StatementType(statementType)
	a.OpeningBalance = pgNumericToDecimal(opening)
	a.CurrentBalance = pgNumericToDecimal(current)
	a.TotalDebits = pgNumericToDecimal(debits)
	a.TotalCredits = pgNumericToDecimal(credits)
	return &a, nil
}

func scanAccountNotFound(row pgx.Row) (*domain.Account, error) {
	a, err := scanAccount(row)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var result []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
