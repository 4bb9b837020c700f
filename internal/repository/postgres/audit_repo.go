package postgres

import (
	"context"
	"encoding/json"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository implements domain.AuditRepository using PostgreSQL
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record inserts an audit event. The structured context is stored as JSONB.
func (r *AuditRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	contextJSON, err := json.Marshal(event.Context)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_events (id, event, context, location, actor_id)
		VALUES ($1, $2, $3, $4, $5)`,
		id, event.Event, contextJSON, event.Location, event.ActorID)
	return err
}

// GetRecent retrieves the most recent audit events, newest first
func (r *AuditRepository) GetRecent(ctx context.Context, limit int32) ([]*domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event, context, location, actor_id, recorded_at
		FROM audit_events ORDER BY recorded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var contextJSON []byte
		if err := rows.Scan(&e.ID, &e.Event, &contextJSON, &e.Location, &e.ActorID, &e.RecordedAt); err != nil {
			return nil, err
		}
		if len(contextJSON) > 0 {
			if err := json.Unmarshal(contextJSON, &e.Context); err != nil {
				return nil, err
			}
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
