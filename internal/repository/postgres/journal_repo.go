package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepository implements domain.JournalRepository using PostgreSQL
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// CreateEntry persists an entry with all its lines in one transaction and
// rolls each line's amounts into the referenced account's running totals.
// Either everything commits or nothing does.
func (r *JournalRepository) CreateEntry(ctx context.Context, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := &domain.JournalEntry{
		ID:          entry.ID,
		EntryDate:   entry.EntryDate,
		Description: entry.Description,
		Status:      entry.Status,
		CreatedBy:   entry.CreatedBy,
	}
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO journal_entries (id, entry_date, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		created.ID, created.EntryDate, created.Description, string(created.Status), created.CreatedBy).
		Scan(&created.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range entry.Lines {
		debit, err := decimalToPgNumeric(line.Debit)
		if err != nil {
			return nil, fmt.Errorf("invalid debit amount: %w", err)
		}
		credit, err := decimalToPgNumeric(line.Credit)
		if err != nil {
			return nil, fmt.Errorf("invalid credit amount: %w", err)
		}

		inserted := line
		inserted.EntryID = created.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO journal_lines (entry_id, account_id, debit, credit, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			created.ID, line.AccountID, debit, credit, line.Note).Scan(&inserted.ID)
		if err != nil {
			return nil, err
		}

		// Roll the posting into the account's running totals. Debit-normal
		// accounts grow with debits, credit-normal with credits.
		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET total_debits = total_debits + $2,
				total_credits = total_credits + $3,
				current_balance = CASE normal_side
					WHEN 'debit' THEN current_balance + $2 - $3
					ELSE current_balance + $3 - $2
				END,
				updated_at = now()
			WHERE id = $1`, line.AccountID, debit, credit)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, domain.ErrLineUnknownAccount
		}

		created.Lines = append(created.Lines, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetEntry retrieves an entry with its lines and documents
func (r *JournalRepository) GetEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, entry_date, description, status, created_by, created_at
		FROM journal_entries WHERE id = $1`, id).
		Scan(&entry.ID, &entry.EntryDate, &entry.Description, &status, &entry.CreatedBy, &entry.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	entry.Status = domain.EntryStatus(status)

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines

	docs, err := r.GetDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		entry.Documents = append(entry.Documents, *d)
	}
	return &entry, nil
}

// GetEntries retrieves entries (without lines) in a date range, newest first
func (r *JournalRepository) GetEntries(ctx context.Context, from, to time.Time) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_date, description, status, created_by, created_at
		FROM journal_entries
		WHERE entry_date >= $1 AND entry_date <= $2
		ORDER BY entry_date DESC, created_at DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		var status string
		if err := rows.Scan(&entry.ID, &entry.EntryDate, &entry.Description, &status, &entry.CreatedBy, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Status = domain.EntryStatus(status)
		result = append(result, &entry)
	}
	return result, rows.Err()
}

// AttachDocument records a document stored in object storage against an entry
func (r *JournalRepository) AttachDocument(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	created := *doc
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO journal_documents (id, entry_id, file_name, content_type, object_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at`,
		created.ID, created.EntryID, created.FileName, created.ContentType, created.ObjectKey, created.ThumbnailKey).
		Scan(&created.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetDocuments retrieves the documents attached to an entry
func (r *JournalRepository) GetDocuments(ctx context.Context, entryID uuid.UUID) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, file_name, content_type, object_key, thumbnail_key, uploaded_at
		FROM journal_documents WHERE entry_id = $1 ORDER BY uploaded_at`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.EntryID, &d.FileName, &d.ContentType, &d.ObjectKey, &d.ThumbnailKey, &d.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}

func (r *JournalRepository) getLines(ctx context.Context, entryID uuid.UUID) ([]domain.JournalLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, account_id, debit, credit, note
		FROM journal_lines WHERE entry_id = $1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var line domain.JournalLine
		var debit, credit pgtype.Numeric
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &debit, &credit, &line.Note); err != nil {
			return nil, err
		}
		line.Debit = pgNumericToDecimal(debit)
		line.Credit = pgNumericToDecimal(credit)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
