package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/finledger/finledger-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxDocumentSize = 10 * 1024 * 1024 // 10MB
	ThumbnailWidth  = 200
	JPEGQuality     = 85
	presignExpiry   = 15 * time.Minute
)

var (
	ErrDocumentTooLarge           = errors.New("file too large. Maximum size is 10MB")
	ErrInvalidDocumentFormat      = errors.New("invalid format. Supported: PDF, JPEG, PNG")
	ErrDocumentStorageUnavailable = errors.New("document storage not configured")
)

// allowedDocumentExtensions maps extensions to content types
var allowedDocumentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// DocumentService stores supporting documents for journal entries. Image
// attachments (receipt scans) additionally get a thumbnail.
type DocumentService struct {
	storage     storage.DocumentRepository
	journalRepo domain.JournalRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(storage storage.DocumentRepository, journalRepo domain.JournalRepository) *DocumentService {
	return &DocumentService{storage: storage, journalRepo: journalRepo}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *DocumentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Attach validates and stores a document against a journal entry. Uploading
// the original and recording the row are not atomic; an orphaned object is
// harmless and cheaper than a missing one.
func (s *DocumentService) Attach(ctx context.Context, entryID uuid.UUID, fileName string, data []byte) (*domain.Document, error) {
	if !s.IsEnabled() {
		return nil, ErrDocumentStorageUnavailable
	}
	if len(data) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedDocumentExtensions[ext]
	if !ok {
		return nil, ErrInvalidDocumentFormat
	}

	// Verify the entry exists before writing anything
	if _, err := s.journalRepo.GetEntry(ctx, entryID); err != nil {
		return nil, err
	}

	objectKey := storage.GenerateObjectKey(entryID, "original", ext)
	if _, err := s.storage.Upload(ctx, objectKey, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.Document{
		EntryID:     entryID,
		FileName:    fileName,
		ContentType: contentType,
		ObjectKey:   objectKey,
	}

	if strings.HasPrefix(contentType, "image/") {
		thumbKey, err := s.storeThumbnail(ctx, entryID, data)
		if err != nil {
			// A missing thumbnail degrades display, not correctness
			log.Warn().Err(err).Str("entry_id", entryID.String()).Msg("Failed to generate document thumbnail")
		} else {
			doc.ThumbnailKey = thumbKey
		}
	}

	return s.journalRepo.AttachDocument(ctx, doc)
}

// storeThumbnail renders a fixed-width JPEG thumbnail and uploads it
func (s *DocumentService) storeThumbnail(ctx context.Context, entryID uuid.UUID, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	thumbKey := storage.GenerateObjectKey(entryID, "thumb", ".jpg")
	if _, err := s.storage.Upload(ctx, thumbKey, &buf, "image/jpeg", int64(buf.Len())); err != nil {
		return "", err
	}
	return thumbKey, nil
}

// DocumentURL returns a short-lived presigned URL for a stored document
func (s *DocumentService) DocumentURL(ctx context.Context, doc *domain.Document) (string, error) {
	if !s.IsEnabled() {
		return "", ErrDocumentStorageUnavailable
	}
	return s.storage.GeneratePresignedURL(ctx, doc.ObjectKey, presignExpiry)
}

// GetDocuments lists the documents attached to an entry
func (s *DocumentService) GetDocuments(ctx context.Context, entryID uuid.UUID) ([]*domain.Document, error) {
	return s.journalRepo.GetDocuments(ctx, entryID)
}
