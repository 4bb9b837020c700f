package domain

import "context"

// AccountCategory is a top-level grouping in the chart of accounts. Its
// NumberPrefix seeds the account numbers of every account beneath it and is
// immutable once any account references the category.
type AccountCategory struct {
	ID           int32  `json:"id"`
	Name         string `json:"name"`
	NumberPrefix string `json:"numberPrefix"`
	Description  string `json:"description"`
}

// AccountSubcategory subdivides a category. OrderIndex determines both the
// default display order and the group code used in account numbering.
type AccountSubcategory struct {
	ID         int32  `json:"id"`
	CategoryID int32  `json:"categoryId"`
	Name       string `json:"name"`
	OrderIndex int32  `json:"orderIndex"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *AccountCategory) (*AccountCategory, error)
	GetByID(ctx context.Context, id int32) (*AccountCategory, error)
	GetByName(ctx context.Context, name string) (*AccountCategory, error)
	GetAll(ctx context.Context) ([]*AccountCategory, error)
	// HasAccounts reports whether any account, active or not, references the
	// category directly or through one of its subcategories.
	HasAccounts(ctx context.Context, id int32) (bool, error)
	Delete(ctx context.Context, id int32) error

	CreateSubcategory(ctx context.Context, sub *AccountSubcategory) (*AccountSubcategory, error)
	GetSubcategoryByName(ctx context.Context, categoryID int32, name string) (*AccountSubcategory, error)
	GetSubcategoriesByCategory(ctx context.Context, categoryID int32) ([]*AccountSubcategory, error)
	SubcategoryHasAccounts(ctx context.Context, id int32) (bool, error)
	DeleteSubcategory(ctx context.Context, id int32) error
}
