// Package content reads the content domains the review engine schedules:
// the question, flashcard and error notebook tables and ordered sequences
// over them. The engine never writes content.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/domain"
)

var tables = map[domain.ContentType]string{
	domain.ContentTypeQuestion:      "questions",
	domain.ContentTypeFlashcard:     "flashcards",
	domain.ContentTypeErrorNotebook: "error_notebook_entries",
}

const sequenceTotalSQL = `
SELECT EXISTS(SELECT 1 FROM content_sequences WHERE id = $1),
       (SELECT count(*) FROM content_sequence_items WHERE sequence_id = $1)`

const sequenceItemsSQL = `
SELECT i.position, i.content_type, i.content_id,
       COALESCE(q.title, f.title, e.title, ''),
       COALESCE(q.body, f.body, e.body, '')
FROM content_sequence_items i
LEFT JOIN questions q              ON i.content_type = 'QUESTION'       AND q.id = i.content_id
LEFT JOIN flashcards f             ON i.content_type = 'FLASHCARD'      AND f.id = i.content_id
LEFT JOIN error_notebook_entries e ON i.content_type = 'ERROR_NOTEBOOK' AND e.id = i.content_id
WHERE i.sequence_id = $1
ORDER BY i.position
OFFSET $2 LIMIT $3`

// Repo provides read access to content backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new content repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ExistingIDs returns the subset of ids that exist as content of type t.
func (r *Repo) ExistingIDs(ctx context.Context, t domain.ContentType, ids []uuid.UUID) ([]uuid.UUID, error) {
	table, ok := tables[t]
	if !ok {
		return nil, domain.NewValidationError("content_type", "unknown: "+string(t))
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT id FROM `+table+` WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, postgres.MapError(err, table, fmt.Sprintf("%d ids", len(ids)))
	}
	defer rows.Close()

	found := make([]uuid.UUID, 0, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, postgres.MapError(err, table, id.String())
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, table, fmt.Sprintf("%d ids", len(ids)))
	}
	return found, nil
}

// FetchBatch returns up to limit items of a sequence starting at offset,
// together with the sequence length. Returns domain.ErrNotFound for an
// unknown sequence.
func (r *Repo) FetchBatch(ctx context.Context, sequenceID uuid.UUID, offset, limit int) (domain.Batch, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	key := sequenceID.String()

	var (
		exists bool
		total  int
	)
	if err := q.QueryRow(ctx, sequenceTotalSQL, sequenceID).Scan(&exists, &total); err != nil {
		return domain.Batch{}, postgres.MapError(err, "content_sequence", key)
	}
	if !exists {
		return domain.Batch{}, fmt.Errorf("content_sequence %s: %w", key, domain.ErrNotFound)
	}

	rows, err := q.Query(ctx, sequenceItemsSQL, sequenceID, offset, limit)
	if err != nil {
		return domain.Batch{}, postgres.MapError(err, "content_sequence", key)
	}
	defer rows.Close()

	batch := domain.Batch{Total: total, Items: make([]domain.ContentItem, 0, limit)}
	for rows.Next() {
		var (
			item        domain.ContentItem
			contentType string
		)
		if err := rows.Scan(&item.Position, &contentType, &item.Ref.ID, &item.Title, &item.Body); err != nil {
			return domain.Batch{}, postgres.MapError(err, "content_sequence", key)
		}
		item.Ref.Type = domain.ContentType(contentType)
		batch.Items = append(batch.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Batch{}, postgres.MapError(err, "content_sequence", key)
	}
	return batch, nil
}
