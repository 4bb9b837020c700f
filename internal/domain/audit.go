package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is a single entry in the audit log. Context carries structured
// key/value detail about the operation; Location identifies the code path
// that recorded it.
type AuditEvent struct {
	ID         uuid.UUID         `json:"id"`
	Event      string            `json:"event"`
	Context    map[string]string `json:"context,omitempty"`
	Location   string            `json:"location"`
	ActorID    uuid.UUID         `json:"actorId"`
	RecordedAt time.Time         `json:"recordedAt"`
}

type AuditRepository interface {
	Record(ctx context.Context, event *AuditEvent) error
	GetRecent(ctx context.Context, limit int32) ([]*AuditEvent, error)
}
