package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// DocumentRepository defines the interface for supporting-document storage
type DocumentRepository interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// GenerateObjectKey creates a unique object key for a journal entry document
func GenerateObjectKey(entryID uuid.UUID, variant string, ext string) string {
	id := uuid.New().String()
	filename := fmt.Sprintf("%s_%s%s", id, variant, ext)
	return path.Join("entries", entryID.String(), filename)
}
