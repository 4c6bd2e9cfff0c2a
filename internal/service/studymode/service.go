// Package studymode provides per-user study mode configuration: the chosen
// mode, exam date and interval bounds the scheduler works within.
package studymode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

type prefsRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.StudyModeConfig, error)
	Upsert(ctx context.Context, cfg *domain.StudyModeConfig) (*domain.StudyModeConfig, error)
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds study mode service settings.
type Config struct {
	DefaultMode domain.StudyMode
	CacheTTL    time.Duration
	CacheSize   int
}

// Service is the study mode config provider. Configs are cached per user
// in a bounded TTL cache owned by the service.
type Service struct {
	prefs prefsRepo
	cache *expirable.LRU[uuid.UUID, domain.StudyModeConfig]
	clock clock
	log   *slog.Logger
	cfg   Config
}

// NewService creates a new study mode service.
func NewService(log *slog.Logger, prefs prefsRepo, cfg Config) *Service {
	if !cfg.DefaultMode.IsValid() {
		cfg.DefaultMode = domain.StudyModeBalanced
	}
	if cfg.CacheSize < 1 {
		cfg.CacheSize = 1024
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	return &Service{
		prefs: prefs,
		cache: expirable.NewLRU[uuid.UUID, domain.StudyModeConfig](cfg.CacheSize, nil, cfg.CacheTTL),
		clock: systemClock{},
		log:   log.With("service", "studymode"),
		cfg:   cfg,
	}
}

// Get returns the user's configuration, or the default one when the user
// never saved preferences.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error) {
	if cfg, ok := s.cache.Get(userID); ok {
		return cfg, nil
	}

	stored, err := s.prefs.Get(ctx, userID)
	var cfg domain.StudyModeConfig
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cfg = domain.DefaultStudyModeConfig(userID, s.cfg.DefaultMode)
	case err != nil:
		return domain.StudyModeConfig{}, fmt.Errorf("get study mode preferences: %w", err)
	default:
		cfg = *stored
	}

	s.cache.Add(userID, cfg)
	return cfg, nil
}

// Current returns the caller's configuration with the values in force now.
func (s *Service) Current(ctx context.Context) (*Current, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	cfg, err := s.Get(ctx, userID)
	if err != nil {
		return nil, domain.StoreError("get study mode", err)
	}
	return s.current(cfg), nil
}

// Update replaces the caller's preferences.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Current, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.prefs.Upsert(ctx, &domain.StudyModeConfig{
		UserID:              userID,
		Mode:                input.Mode,
		ExamDate:            input.ExamDate,
		AutoAdjust:          input.AutoAdjust,
		MaxIntervalOverride: input.MaxIntervalDays,
		EnableFlashcards:    input.EnableFlashcards,
		EnableErrorNotebook: input.EnableErrorNotebook,
	})
	if err != nil {
		return nil, domain.StoreError("upsert study mode preferences", err)
	}

	s.cache.Add(userID, *saved)

	cur := s.current(*saved)
	s.log.InfoContext(ctx, "study mode updated",
		slog.String("user_id", userID.String()),
		slog.String("mode", string(saved.Mode)),
		slog.String("effective_mode", string(cur.EffectiveMode)),
		slog.Bool("auto_adjust", saved.AutoAdjust),
	)

	return cur, nil
}

// Invalidate drops the cached configuration of userID.
func (s *Service) Invalidate(userID uuid.UUID) {
	s.cache.Remove(userID)
}

func (s *Service) current(cfg domain.StudyModeConfig) *Current {
	now := s.clock.Now()
	cur := &Current{
		Config:          cfg,
		EffectiveMode:   cfg.EffectiveMode(now),
		MaxIntervalDays: cfg.MaxIntervalDays(now),
		TargetRetention: cfg.TargetRetention(now),
	}
	if cfg.ExamDate != nil {
		days := domain.DaysUntil(now, *cfg.ExamDate)
		cur.DaysUntilExam = &days
	}
	return cur
}

// Current is a configuration together with the values it resolves to now.
type Current struct {
	Config          domain.StudyModeConfig
	EffectiveMode   domain.StudyMode
	MaxIntervalDays int
	TargetRetention float64
	DaysUntilExam   *int
}

// UpdateInput holds the full set of user preferences.
type UpdateInput struct {
	Mode                domain.StudyMode
	ExamDate            *time.Time
	AutoAdjust          bool
	MaxIntervalDays     *int
	EnableFlashcards    bool
	EnableErrorNotebook bool
}

const maxIntervalCeiling = 365

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	if !i.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be CRAMMING, INTENSIVE, BALANCED or RELAXED"})
	}
	if i.MaxIntervalDays != nil && (*i.MaxIntervalDays < 1 || *i.MaxIntervalDays > maxIntervalCeiling) {
		errs = append(errs, domain.FieldError{Field: "max_interval_days", Message: "must be between 1 and 365"})
	}
	if i.AutoAdjust && i.ExamDate == nil {
		errs = append(errs, domain.FieldError{Field: "exam_date", Message: "required when auto_adjust is on"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
