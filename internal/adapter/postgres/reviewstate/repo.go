// Package reviewstate implements the review state store on PostgreSQL.
// Point reads and writes use raw SQL; due listings are built with squirrel.
package reviewstate

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/domain"
)

const entity = "review_state"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var columns = []string{
	"user_id", "content_type", "content_id", "stability", "difficulty",
	"scheduled_interval_days", "due_at", "last_grade", "consecutive_good_or_easy",
	"total_reviews", "lapses", "last_reviewed_at", "created_at", "updated_at",
}

const selectColumns = `
user_id, content_type, content_id, stability, difficulty,
scheduled_interval_days, due_at, last_grade, consecutive_good_or_easy,
total_reviews, lapses, last_reviewed_at, created_at, updated_at`

const getSQL = `SELECT` + selectColumns + `
FROM review_states
WHERE user_id = $1 AND content_type = $2 AND content_id = $3`

// lockSQL serializes writers of one item, including its first write when no
// row exists yet to lock. Released at transaction end.
const lockSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

const upsertSQL = `
INSERT INTO review_states (
    user_id, content_type, content_id, stability, difficulty,
    scheduled_interval_days, due_at, last_grade, consecutive_good_or_easy,
    total_reviews, lapses, last_reviewed_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (user_id, content_type, content_id) DO UPDATE SET
    stability                = EXCLUDED.stability,
    difficulty               = EXCLUDED.difficulty,
    scheduled_interval_days  = EXCLUDED.scheduled_interval_days,
    due_at                   = EXCLUDED.due_at,
    last_grade               = EXCLUDED.last_grade,
    consecutive_good_or_easy = EXCLUDED.consecutive_good_or_easy,
    total_reviews            = EXCLUDED.total_reviews,
    lapses                   = EXCLUDED.lapses,
    last_reviewed_at         = EXCLUDED.last_reviewed_at,
    updated_at               = EXCLUDED.updated_at`

const deleteSQL = `
DELETE FROM review_states
WHERE user_id = $1 AND content_type = $2 AND content_id = $3`

// Repo provides review state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the state of ref, or domain.ErrNotFound before its first review.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	st, err := scanState(q.QueryRow(ctx, getSQL, userID, string(ref.Type), ref.ID))
	if err != nil {
		return nil, postgres.MapError(err, entity, key(userID, ref))
	}
	return st, nil
}

// GetForUpdate is Get that holds the item's write lock until the surrounding
// transaction ends. It must run inside TxManager.RunInTx.
func (r *Repo) GetForUpdate(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error) {
	k := key(userID, ref)
	q, ok := postgres.TxFromCtx(ctx)
	if !ok {
		return nil, fmt.Errorf("%s %s: lock requires a transaction", entity, k)
	}

	if _, err := q.Exec(ctx, lockSQL, k); err != nil {
		return nil, postgres.MapError(err, entity, k)
	}

	st, err := scanState(q.QueryRow(ctx, getSQL+` FOR UPDATE`, userID, string(ref.Type), ref.ID))
	if err != nil {
		return nil, postgres.MapError(err, entity, k)
	}
	return st, nil
}

// Put inserts or replaces a state. CreatedAt is kept on replace.
func (r *Repo) Put(ctx context.Context, st *domain.ReviewState) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var lastGrade *int16
	if st.LastGrade != nil {
		g := int16(*st.LastGrade)
		lastGrade = &g
	}

	_, err := q.Exec(ctx, upsertSQL,
		st.UserID, string(st.Ref.Type), st.Ref.ID, st.Stability, st.Difficulty,
		st.ScheduledIntervalDays, st.DueAt, lastGrade, st.ConsecutiveGoodOrEasy,
		st.TotalReviews, st.Lapses, st.LastReviewedAt, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(err, entity, key(st.UserID, st.Ref))
	}
	return nil
}

// Delete removes the state of ref. Returns domain.ErrNotFound when there is none.
func (r *Repo) Delete(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	k := key(userID, ref)

	tag, err := q.Exec(ctx, deleteSQL, userID, string(ref.Type), ref.ID)
	if err != nil {
		return postgres.MapError(err, entity, k)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, k, domain.ErrNotFound)
	}
	return nil
}

// ListDue returns states due at filter.AsOf, ordered by due_at then content id.
func (r *Repo) ListDue(ctx context.Context, userID uuid.UUID, filter domain.DueFilter) ([]*domain.ReviewState, error) {
	sql, args, err := dueQuery(userID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, entity, "due:"+userID.String())
	}
	defer rows.Close()

	var states []*domain.ReviewState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, postgres.MapError(err, entity, "due:"+userID.String())
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, "due:"+userID.String())
	}
	return states, nil
}

func dueQuery(userID uuid.UUID, filter domain.DueFilter) sq.SelectBuilder {
	q := psql.Select(columns...).
		From("review_states").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.LtOrEq{"due_at": filter.AsOf}).
		OrderBy("due_at", "content_id", "content_type")

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		q = q.Where(sq.Eq{"content_type": types})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

func scanState(row pgx.Row) (*domain.ReviewState, error) {
	var (
		st          domain.ReviewState
		contentType string
		lastGrade   *int16
	)
	err := row.Scan(
		&st.UserID, &contentType, &st.Ref.ID, &st.Stability, &st.Difficulty,
		&st.ScheduledIntervalDays, &st.DueAt, &lastGrade, &st.ConsecutiveGoodOrEasy,
		&st.TotalReviews, &st.Lapses, &st.LastReviewedAt, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.Ref.Type = domain.ContentType(contentType)
	if lastGrade != nil {
		g := domain.ReviewGrade(*lastGrade)
		st.LastGrade = &g
	}
	return &st, nil
}

func key(userID uuid.UUID, ref domain.ContentRef) string {
	return userID.String() + ":" + ref.String()
}
