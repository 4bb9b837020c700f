package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/messages"
	"github.com/finledger/finledger-backend/internal/middleware"
	"github.com/finledger/finledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// JournalHandler handles journal entry HTTP requests
type JournalHandler struct {
	journalService  *service.JournalService
	documentService *service.DocumentService
	catalog         *messages.Catalog
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *service.JournalService, documentService *service.DocumentService, catalog *messages.Catalog) *JournalHandler {
	return &JournalHandler{
		journalService:  journalService,
		documentService: documentService,
		catalog:         catalog,
	}
}

// JournalLineRequest represents one line of a draft entry
type JournalLineRequest struct {
	AccountID int32  `json:"accountId"`
	Debit     string `json:"debit,omitempty"`
	Credit    string `json:"credit,omitempty"`
	Note      string `json:"note,omitempty"`
}

// JournalEntryRequest represents a draft journal entry
type JournalEntryRequest struct {
	EntryDate   string               `json:"entryDate"`
	Description string               `json:"description,omitempty"`
	Lines       []JournalLineRequest `json:"lines"`
}

// ValidateResultResponse reports a passed validation
type ValidateResultResponse struct {
	Valid       bool   `json:"valid"`
	TotalDebit  string `json:"totalDebit"`
	TotalCredit string `json:"totalCredit"`
}

// JournalLineResponse represents a persisted line in API responses
type JournalLineResponse struct {
	ID        int32  `json:"id"`
	AccountID int32  `json:"accountId"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
	Note      string `json:"note,omitempty"`
}

// JournalEntryResponse represents a posted entry in API responses
type JournalEntryResponse struct {
	ID          string                `json:"id"`
	EntryDate   string                `json:"entryDate"`
	Description string                `json:"description,omitempty"`
	Status      string                `json:"status"`
	Lines       []JournalLineResponse `json:"lines"`
	Documents   []DocumentResponse    `json:"documents,omitempty"`
	CreatedAt   string                `json:"createdAt"`
}

// DocumentResponse represents an attached document in API responses
type DocumentResponse struct {
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	UploadedAt   string `json:"uploadedAt"`
}

// ValidateEntry handles POST /api/v1/journal/validate. A draft that passes
// gets the rounded totals back; a draft that fails gets the problem details
// for the first violated rule. Nothing is persisted either way.
func (h *JournalHandler) ValidateEntry(c echo.Context) error {
	var req JournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	lines, verr := h.toDomainLines(c, req.Lines)
	if verr != nil {
		return verr
	}

	if err := h.journalService.Validate(c.Request().Context(), lines); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Amounts must not be negative", nil)
		}
		return NewDomainError(c, h.catalog, err)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	return c.JSON(http.StatusOK, ValidateResultResponse{
		Valid:       true,
		TotalDebit:  totalDebit.Round(2).StringFixed(2),
		TotalCredit: totalCredit.Round(2).StringFixed(2),
	})
}

// PostEntry handles POST /api/v1/journal/entries
func (h *JournalHandler) PostEntry(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req JournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	entryDate := time.Now().UTC()
	if req.EntryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			return NewValidationError(c, "Invalid entry date", []ValidationError{
				{Field: "entryDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		entryDate = parsed
	}

	lines, verr := h.toDomainLines(c, req.Lines)
	if verr != nil {
		return verr
	}

	entry, err := h.journalService.PostEntry(c.Request().Context(), service.PostEntryInput{
		EntryDate:   entryDate,
		Description: req.Description,
		Lines:       lines,
		CreatedBy:   userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Amounts must not be negative", nil)
		}
		if code := domain.CodeOf(err); code != "ERR_INTERNAL" {
			return NewDomainError(c, h.catalog, err)
		}
		log.Error().Err(err).Msg("Failed to post journal entry")
		return NewInternalError(c, "Failed to post journal entry")
	}

	log.Info().
		Str("entry_id", entry.ID.String()).
		Int("line_count", len(entry.Lines)).
		Msg("Journal entry posted")

	return c.JSON(http.StatusCreated, h.toEntryResponse(c, entry))
}

// GetEntry handles GET /api/v1/journal/entries/:id
func (h *JournalHandler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	entry, err := h.journalService.GetEntry(c.Request().Context(), id)
	if err != nil {
		return NewDomainError(c, h.catalog, err)
	}
	return c.JSON(http.StatusOK, h.toEntryResponse(c, entry))
}

// GetEntries handles GET /api/v1/journal/entries?from=...&to=...
func (h *JournalHandler) GetEntries(c echo.Context) error {
	from, to, verr := parseDateRange(c)
	if verr != nil {
		return verr
	}

	entries, err := h.journalService.GetEntries(c.Request().Context(), from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get journal entries")
		return NewInternalError(c, "Failed to get journal entries")
	}

	response := make([]JournalEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = h.toEntryResponse(c, entry)
	}
	return c.JSON(http.StatusOK, response)
}

// AttachDocument handles POST /api/v1/journal/entries/:id/documents
func (h *JournalHandler) AttachDocument(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing file", []ValidationError{
			{Field: "file", Message: "A file is required"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxDocumentSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	doc, err := h.documentService.Attach(c.Request().Context(), entryID, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentTooLarge),
			errors.Is(err, service.ErrInvalidDocumentFormat):
			return NewValidationError(c, err.Error(), nil)
		case errors.Is(err, service.ErrDocumentStorageUnavailable):
			return NewInternalError(c, err.Error())
		case errors.Is(err, domain.ErrEntryNotFound):
			return NewDomainError(c, h.catalog, err)
		}
		log.Error().Err(err).Str("entry_id", entryID.String()).Msg("Failed to attach document")
		return NewInternalError(c, "Failed to attach document")
	}

	log.Info().
		Str("entry_id", entryID.String()).
		Str("document_id", doc.ID.String()).
		Str("file_name", doc.FileName).
		Msg("Document attached")

	return c.JSON(http.StatusCreated, h.toDocumentResponse(c, doc))
}

// GetDocuments handles GET /api/v1/journal/entries/:id/documents
func (h *JournalHandler) GetDocuments(c echo.Context) error {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	docs, err := h.documentService.GetDocuments(c.Request().Context(), entryID)
	if err != nil {
		log.Error().Err(err).Str("entry_id", entryID.String()).Msg("Failed to get documents")
		return NewInternalError(c, "Failed to get documents")
	}

	response := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		response[i] = h.toDocumentResponse(c, doc)
	}
	return c.JSON(http.StatusOK, response)
}

// toDomainLines parses the request lines. Malformed amounts are a request
// problem, not a business-rule violation, so they fail here with a field
// level validation error.
func (h *JournalHandler) toDomainLines(c echo.Context, reqLines []JournalLineRequest) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, rl := range reqLines {
		debit, err := parseAmount(rl.Debit)
		if err != nil {
			return nil, NewValidationError(c, "Invalid debit amount", []ValidationError{
				{Field: "lines.debit", Message: "Must be a valid decimal number"},
			})
		}
		credit, err := parseAmount(rl.Credit)
		if err != nil {
			return nil, NewValidationError(c, "Invalid credit amount", []ValidationError{
				{Field: "lines.credit", Message: "Must be a valid decimal number"},
			})
		}
		lines[i] = domain.JournalLine{
			AccountID: rl.AccountID,
			Debit:     debit,
			Credit:    credit,
			Note:      rl.Note,
		}
	}
	return lines, nil
}

func (h *JournalHandler) toEntryResponse(c echo.Context, entry *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(entry.Lines))
	for i, line := range entry.Lines {
		lines[i] = JournalLineResponse{
			ID:        line.ID,
			AccountID: line.AccountID,
			Debit:     line.Debit.StringFixed(2),
			Credit:    line.Credit.StringFixed(2),
			Note:      line.Note,
		}
	}

	var documents []DocumentResponse
	for i := range entry.Documents {
		documents = append(documents, h.toDocumentResponse(c, &entry.Documents[i]))
	}

	return JournalEntryResponse{
		ID:          entry.ID.String(),
		EntryDate:   entry.EntryDate.Format("2006-01-02"),
		Description: entry.Description,
		Status:      string(entry.Status),
		Lines:       lines,
		Documents:   documents,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	}
}

func (h *JournalHandler) toDocumentResponse(c echo.Context, doc *domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          doc.ID.String(),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		UploadedAt:  doc.UploadedAt.Format(time.RFC3339),
	}
	if h.documentService.IsEnabled() {
		if url, err := h.documentService.DocumentURL(c.Request().Context(), doc); err == nil {
			resp.URL = url
		}
		if doc.ThumbnailKey != "" {
			thumb := *doc
			thumb.ObjectKey = doc.ThumbnailKey
			if url, err := h.documentService.DocumentURL(c.Request().Context(), &thumb); err == nil {
				resp.ThumbnailURL = url
			}
		}
	}
	return resp
}

// parseDateRange reads the optional from/to query params, defaulting to the
// last 30 days.
func parseDateRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, NewValidationError(c, "Invalid from date", []ValidationError{
				{Field: "from", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, NewValidationError(c, "Invalid to date", []ValidationError{
				{Field: "to", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		to = parsed
	}
	return from, to, nil
}
