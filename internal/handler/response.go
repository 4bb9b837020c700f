package handler

import (
	"errors"
	"net/http"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response. Code
// carries the stable domain error code so clients never parse Detail.
type ProblemDetails struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Status     int               `json:"status"`
	Code       string            `json:"code,omitempty"`
	Detail     string            `json:"detail,omitempty"`
	Instance   string            `json:"instance,omitempty"`
	Difference string            `json:"difference,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finledger.app/errors/validation"
	ErrorTypeNotFound     = "https://finledger.app/errors/not-found"
	ErrorTypeUnauthorized = "https://finledger.app/errors/unauthorized"
	ErrorTypeConflict     = "https://finledger.app/errors/conflict"
	ErrorTypeInternal     = "https://finledger.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errs []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errs,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// notFoundErrors are the domain sentinels that map to 404 rather than 400.
var notFoundErrors = []error{
	domain.ErrCategoryNotFound,
	domain.ErrSubcategoryNotFound,
	domain.ErrAccountNotFound,
	domain.ErrEntryNotFound,
	domain.ErrNotFound,
}

// NewDomainError maps a domain error to a ProblemDetails response: the
// stable code, an HTTP status by error kind, and the user-facing message
// resolved through the catalog. Unknown errors become 500 ERR_INTERNAL.
func NewDomainError(c echo.Context, catalog *messages.Catalog, err error) error {
	code := domain.CodeOf(err)
	detail := code
	if catalog != nil {
		detail = catalog.Resolve(c.Request().Context(), code)
	}

	status := http.StatusBadRequest
	problemType := ErrorTypeValidation
	title := "Validation Error"
	switch {
	case code == "ERR_INTERNAL" || errors.Is(err, domain.ErrAccountCreationFailed):
		status = http.StatusInternalServerError
		problemType = ErrorTypeInternal
		title = "Internal Server Error"
	case isNotFound(err):
		status = http.StatusNotFound
		problemType = ErrorTypeNotFound
		title = "Not Found"
	case errors.Is(err, domain.ErrCategoryHasAccounts), errors.Is(err, domain.ErrSubcategoryHasAccounts):
		status = http.StatusConflict
		problemType = ErrorTypeConflict
		title = "Conflict"
	}

	pd := ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Code:     code,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	}

	// Surface the signed difference for unbalanced entries so the caller
	// can show the user how far off they are
	var unbalanced *domain.UnbalancedError
	if errors.As(err, &unbalanced) {
		pd.Difference = unbalanced.Difference().StringFixed(2)
	}

	return c.JSON(status, pd)
}

func isNotFound(err error) bool {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
