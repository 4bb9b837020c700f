package handler

import (
	"net/http"
	"strconv"

	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles chart-of-accounts structure HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	catalog         *messages.Catalog
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, catalog *messages.Catalog) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, catalog: catalog}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name         string `json:"name"`
	NumberPrefix string `json:"numberPrefix"`
	Description  string `json:"description,omitempty"`
}

// CreateSubcategoryRequest represents the create subcategory request body
type CreateSubcategoryRequest struct {
	Name       string `json:"name"`
	OrderIndex int32  `json:"orderIndex"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, req.Name, req.NumberPrefix, req.Description)
	if err != nil {
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int32("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get categories")
		return NewInternalError(c, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, int32(id)); err != nil {
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int("category_id", id).Msg("Category deleted")
	return c.NoContent(http.StatusNoContent)
}

// CreateSubcategory handles POST /api/v1/categories/:id/subcategories
func (h *CategoryHandler) CreateSubcategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CreateSubcategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	sub, err := h.categoryService.CreateSubcategory(c.Request().Context(), userID, int32(categoryID), req.Name, req.OrderIndex)
	if err != nil {
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int32("subcategory_id", sub.ID).Str("name", sub.Name).Msg("Subcategory created")
	return c.JSON(http.StatusCreated, sub)
}

// GetSubcategories handles GET /api/v1/categories/:id/subcategories
func (h *CategoryHandler) GetSubcategories(c echo.Context) error {
	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	subs, err := h.categoryService.GetSubcategories(c.Request().Context(), int32(categoryID))
	if err != nil {
		log.Error().Err(err).Int("category_id", categoryID).Msg("Failed to get subcategories")
		return NewInternalError(c, "Failed to get subcategories")
	}
	return c.JSON(http.StatusOK, subs)
}

// DeleteSubcategory handles DELETE /api/v1/subcategories/:id
func (h *CategoryHandler) DeleteSubcategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid subcategory ID", nil)
	}

	if err := h.categoryService.DeleteSubcategory(c.Request().Context(), userID, int32(id)); err != nil {
		return NewDomainError(c, h.catalog, err)
	}

	log.Info().Int("subcategory_id", id).Msg("Subcategory deleted")
	return c.NoContent(http.StatusNoContent)
}
