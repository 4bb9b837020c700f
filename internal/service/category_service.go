package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/websocket"
	"github.com/google/uuid"
)

// CategoryService manages the category/subcategory structure of the chart
// of accounts.
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	audit          *AuditService
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, audit *AuditService) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, audit: audit}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCategory creates a new account category
func (s *CategoryService) CreateCategory(ctx context.Context, actorID uuid.UUID, name, numberPrefix, description string) (*domain.AccountCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	numberPrefix = strings.TrimSpace(numberPrefix)
	if numberPrefix == "" {
		return nil, domain.ErrInvalidInput
	}

	created, err := s.categoryRepo.Create(ctx, &domain.AccountCategory{
		Name:         name,
		NumberPrefix: numberPrefix,
		Description:  description,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, "category created", map[string]string{
		"name":          created.Name,
		"number_prefix": created.NumberPrefix,
	}, "CategoryService.CreateCategory")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.CategoryCreated(created))
	}
	return created, nil
}

// GetCategories retrieves all categories
func (s *CategoryService) GetCategories(ctx context.Context) ([]*domain.AccountCategory, error) {
	return s.categoryRepo.GetAll(ctx)
}

// DeleteCategory removes a category. Deletion is blocked while any account,
// active or not, still references the category directly or through one of
// its subcategories.
func (s *CategoryService) DeleteCategory(ctx context.Context, actorID uuid.UUID, id int32) error {
	hasAccounts, err := s.categoryRepo.HasAccounts(ctx, id)
	if err != nil {
		return err
	}
	if hasAccounts {
		return domain.ErrCategoryHasAccounts
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(actorID, "category deleted", map[string]string{
		"category_id": fmt.Sprintf("%d", id),
	}, "CategoryService.DeleteCategory")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.CategoryDeleted(id))
	}
	return nil
}

// CreateSubcategory creates a new subcategory within an existing category
func (s *CategoryService) CreateSubcategory(ctx context.Context, actorID uuid.UUID, categoryID int32, name string, orderIndex int32) (*domain.AccountSubcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	// Resolve the category first so a bad reference surfaces as not-found
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	created, err := s.categoryRepo.CreateSubcategory(ctx, &domain.AccountSubcategory{
		CategoryID: category.ID,
		Name:       name,
		OrderIndex: orderIndex,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, "subcategory created", map[string]string{
		"category": category.Name,
		"name":     created.Name,
	}, "CategoryService.CreateSubcategory")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.SubcategoryCreated(created))
	}
	return created, nil
}

// GetSubcategories retrieves the subcategories of a category in display order
func (s *CategoryService) GetSubcategories(ctx context.Context, categoryID int32) ([]*domain.AccountSubcategory, error) {
	return s.categoryRepo.GetSubcategoriesByCategory(ctx, categoryID)
}

// DeleteSubcategory removes a subcategory. Blocked while any account still
// references it.
func (s *CategoryService) DeleteSubcategory(ctx context.Context, actorID uuid.UUID, id int32) error {
	hasAccounts, err := s.categoryRepo.SubcategoryHasAccounts(ctx, id)
	if err != nil {
		return err
	}
	if hasAccounts {
		return domain.ErrSubcategoryHasAccounts
	}

	if err := s.categoryRepo.DeleteSubcategory(ctx, id); err != nil {
		return err
	}

	s.audit.Record(actorID, "subcategory deleted", map[string]string{
		"subcategory_id": fmt.Sprintf("%d", id),
	}, "CategoryService.DeleteSubcategory")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.SubcategoryDeleted(id))
	}
	return nil
}
