// Package reviewevent implements the append-only review history on PostgreSQL.
package reviewevent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/domain"
)

const entity = "review_event"

const insertSQL = `
INSERT INTO review_events (id, user_id, content_type, content_id, grade, scheduled_interval_days, graded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listRecentSQL = `
SELECT id, user_id, content_type, content_id, grade, scheduled_interval_days, graded_at
FROM review_events
WHERE user_id = $1 AND content_type = $2 AND content_id = $3
ORDER BY graded_at DESC, id DESC
LIMIT $4`

const pruneSQL = `DELETE FROM review_events WHERE graded_at < $1`

// Repo provides review event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append stores one grading event.
func (r *Repo) Append(ctx context.Context, e *domain.ReviewEvent) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		e.ID, e.UserID, string(e.Ref.Type), e.Ref.ID, int16(e.Grade), e.ScheduledIntervalDays, e.GradedAt)
	if err != nil {
		return postgres.MapError(err, entity, e.ID.String())
	}
	return nil
}

// ListRecent returns up to limit events of ref, newest first.
func (r *Repo) ListRecent(ctx context.Context, userID uuid.UUID, ref domain.ContentRef, limit int) ([]*domain.ReviewEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	k := userID.String() + ":" + ref.String()

	rows, err := q.Query(ctx, listRecentSQL, userID, string(ref.Type), ref.ID, limit)
	if err != nil {
		return nil, postgres.MapError(err, entity, k)
	}
	defer rows.Close()

	var events []*domain.ReviewEvent
	for rows.Next() {
		var (
			e           domain.ReviewEvent
			contentType string
			grade       int16
		)
		if err := rows.Scan(&e.ID, &e.UserID, &contentType, &e.Ref.ID, &grade, &e.ScheduledIntervalDays, &e.GradedAt); err != nil {
			return nil, postgres.MapError(err, entity, k)
		}
		e.Ref.Type = domain.ContentType(contentType)
		e.Grade = domain.ReviewGrade(grade)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, k)
	}
	return events, nil
}

// PruneBefore deletes events graded before cutoff and returns how many were removed.
func (r *Repo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, pruneSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune review events: %w", postgres.MapError(err, entity, "before:"+cutoff.Format(time.RFC3339)))
	}
	return tag.RowsAffected(), nil
}
