// Package studymode stores per-user study mode preferences in PostgreSQL.
package studymode

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/domain"
)

const entity = "study_mode_preferences"

const getSQL = `
SELECT user_id, mode, exam_date, auto_adjust, max_interval_days,
       enable_flashcards, enable_error_notebook, updated_at
FROM study_mode_preferences
WHERE user_id = $1`

const upsertSQL = `
INSERT INTO study_mode_preferences (
    user_id, mode, exam_date, auto_adjust, max_interval_days,
    enable_flashcards, enable_error_notebook, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (user_id) DO UPDATE SET
    mode                  = EXCLUDED.mode,
    exam_date             = EXCLUDED.exam_date,
    auto_adjust           = EXCLUDED.auto_adjust,
    max_interval_days     = EXCLUDED.max_interval_days,
    enable_flashcards     = EXCLUDED.enable_flashcards,
    enable_error_notebook = EXCLUDED.enable_error_notebook,
    updated_at            = now()
RETURNING user_id, mode, exam_date, auto_adjust, max_interval_days,
          enable_flashcards, enable_error_notebook, updated_at`

// Repo provides study mode preference persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new study mode repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the saved preferences of userID, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*domain.StudyModeConfig, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	cfg, err := scan(q.QueryRow(ctx, getSQL, userID))
	if err != nil {
		return nil, postgres.MapError(err, entity, userID.String())
	}
	return cfg, nil
}

// Upsert saves cfg and returns the stored row.
func (r *Repo) Upsert(ctx context.Context, cfg *domain.StudyModeConfig) (*domain.StudyModeConfig, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var maxInterval *int32
	if cfg.MaxIntervalOverride != nil {
		v := int32(*cfg.MaxIntervalOverride)
		maxInterval = &v
	}

	saved, err := scan(q.QueryRow(ctx, upsertSQL,
		cfg.UserID, string(cfg.Mode), cfg.ExamDate, cfg.AutoAdjust, maxInterval,
		cfg.EnableFlashcards, cfg.EnableErrorNotebook,
	))
	if err != nil {
		return nil, postgres.MapError(err, entity, cfg.UserID.String())
	}
	return saved, nil
}

func scan(row pgx.Row) (*domain.StudyModeConfig, error) {
	var (
		cfg         domain.StudyModeConfig
		mode        string
		maxInterval *int32
	)
	err := row.Scan(&cfg.UserID, &mode, &cfg.ExamDate, &cfg.AutoAdjust, &maxInterval,
		&cfg.EnableFlashcards, &cfg.EnableErrorNotebook, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cfg.Mode = domain.StudyMode(mode)
	if maxInterval != nil {
		v := int(*maxInterval)
		cfg.MaxIntervalOverride = &v
	}
	return &cfg, nil
}
