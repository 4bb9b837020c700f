package postgres

import (
	"context"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new account category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.AccountCategory) (*domain.AccountCategory, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO account_categories (name, number_prefix, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, number_prefix, description`,
		category.Name, category.NumberPrefix, category.Description)

	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int32) (*domain.AccountCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, number_prefix, description
		FROM account_categories WHERE id = $1`, id)
	return scanCategoryNotFound(row)
}

// GetByName retrieves a category by its unique name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.AccountCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, number_prefix, description
		FROM account_categories WHERE name = $1`, name)
	return scanCategoryNotFound(row)
}

// GetAll retrieves all categories ordered by number prefix
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*domain.AccountCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, number_prefix, description
		FROM account_categories ORDER BY number_prefix`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.AccountCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// HasAccounts reports whether any account references the category, directly
// or through one of its subcategories. Inactive accounts count.
func (r *CategoryRepository) HasAccounts(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts a
			LEFT JOIN account_subcategories s ON s.id = a.subcategory_id
			WHERE a.category_id = $1 OR s.category_id = $1
		)`, id).Scan(&exists)
	return exists, err
}

// Delete removes a category. Callers must check HasAccounts first; the
// foreign keys reject the delete regardless.
func (r *CategoryRepository) Delete(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM account_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// CreateSubcategory creates a new subcategory within a category
func (r *CategoryRepository) CreateSubcategory(ctx context.Context, sub *domain.AccountSubcategory) (*domain.AccountSubcategory, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO account_subcategories (category_id, name, order_index)
		VALUES ($1, $2, $3)
		RETURNING id, category_id, name, order_index`,
		sub.CategoryID, sub.Name, sub.OrderIndex)

	var created domain.AccountSubcategory
	if err := row.Scan(&created.ID, &created.CategoryID, &created.Name, &created.OrderIndex); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetSubcategoryByName retrieves a subcategory by name within a category
func (r *CategoryRepository) GetSubcategoryByName(ctx context.Context, categoryID int32, name string) (*domain.AccountSubcategory, error) {
	var sub domain.AccountSubcategory
	err := r.pool.QueryRow(ctx, `
		SELECT id, category_id, name, order_index
		FROM account_subcategories WHERE category_id = $1 AND name = $2`,
		categoryID, name).Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.OrderIndex)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubcategoryNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// GetSubcategoriesByCategory retrieves all subcategories of a category in display order
func (r *CategoryRepository) GetSubcategoriesByCategory(ctx context.Context, categoryID int32) ([]*domain.AccountSubcategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category_id, name, order_index
		FROM account_subcategories WHERE category_id = $1 ORDER BY order_index`,
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.AccountSubcategory
	for rows.Next() {
		var sub domain.AccountSubcategory
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.OrderIndex); err != nil {
			return nil, err
		}
		result = append(result, &sub)
	}
	return result, rows.Err()
}

// SubcategoryHasAccounts reports whether any account references the subcategory
func (r *CategoryRepository) SubcategoryHasAccounts(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE subcategory_id = $1)`, id).Scan(&exists)
	return exists, err
}

// DeleteSubcategory removes a subcategory
func (r *CategoryRepository) DeleteSubcategory(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM account_subcategories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubcategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.AccountCategory, error) {
	var c domain.AccountCategory
	if err := row.Scan(&c.ID, &c.Name, &c.NumberPrefix, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCategoryNotFound(row pgx.Row) (*domain.AccountCategory, error) {
	c, err := scanCategory(row)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
