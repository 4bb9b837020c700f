package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository loads user-facing error message overrides from the
// error_messages table. Codes without an override fall back to the built-in
// defaults supplied at construction.
type MessageRepository struct {
	pool     *pgxpool.Pool
	defaults map[string]string
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(pool *pgxpool.Pool, defaults map[string]string) *MessageRepository {
	return &MessageRepository{pool: pool, defaults: defaults}
}

// Load returns the full code->message map: defaults overlaid with any rows
// present in error_messages.
func (r *MessageRepository) Load(ctx context.Context) (map[string]string, error) {
	entries := make(map[string]string, len(r.defaults))
	for code, msg := range r.defaults {
		entries[code] = msg
	}

	rows, err := r.pool.Query(ctx, `SELECT code, message FROM error_messages`)
	if err != nil {
		return nil, fmt.Errorf("failed to load error messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, message string
		if err := rows.Scan(&code, &message); err != nil {
			return nil, fmt.Errorf("failed to scan error message: %w", err)
		}
		entries[code] = message
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read error messages: %w", err)
	}
	return entries, nil
}
