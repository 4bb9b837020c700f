package service

import (
	"context"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// auditTimeout bounds the background write so a stuck database connection
// cannot leak goroutines.
const auditTimeout = 5 * time.Second

// AuditService records audit events without ever failing the operation that
// produced them. Writes happen on a background goroutine; failures are
// logged and dropped.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record queues an audit event. Fire-and-forget: the caller's error path is
// never affected.
func (s *AuditService) Record(actorID uuid.UUID, event string, eventContext map[string]string, location string) {
	if s == nil || s.repo == nil {
		return
	}
	e := &domain.AuditEvent{
		Event:    event,
		Context:  eventContext,
		Location: location,
		ActorID:  actorID,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := s.repo.Record(ctx, e); err != nil {
			log.Error().Err(err).
				Str("event", event).
				Str("location", location).
				Msg("Failed to record audit event")
		}
	}()
}

// GetRecent returns the most recent audit events
func (s *AuditService) GetRecent(ctx context.Context, limit int32) ([]*domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.GetRecent(ctx, limit)
}
