package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/review/srs"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type stateStore interface {
	Get(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error)
	Put(ctx context.Context, state *domain.ReviewState) error
	Delete(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) error
	ListDue(ctx context.Context, userID uuid.UUID, filter domain.DueFilter) ([]*domain.ReviewState, error)
}

type eventLog interface {
	Append(ctx context.Context, event *domain.ReviewEvent) error
	// ListRecent returns up to limit events for ref, newest first.
	ListRecent(ctx context.Context, userID uuid.UUID, ref domain.ContentRef, limit int) ([]*domain.ReviewEvent, error)
}

type contentChecker interface {
	Exists(ctx context.Context, ref domain.ContentRef) (bool, error)
}

type modeProvider interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds review service tunables.
type Config struct {
	// RetirementThreshold is the GOOD/EASY streak at which retiring is suggested.
	RetirementThreshold int
	// RecentEventsWindow bounds the history used for performance analysis.
	RecentEventsWindow int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		RetirementThreshold: 3,
		RecentEventsWindow:  10,
	}
}

// Service is the unified review service: one scheduling model for every content type.
type Service struct {
	states  stateStore
	events  eventLog
	content contentChecker
	modes   modeProvider
	tx      txManager
	calc    *srs.Calculator
	clock   clock
	log     *slog.Logger
	cfg     Config
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	states stateStore,
	events eventLog,
	content contentChecker,
	modes modeProvider,
	tx txManager,
	calc *srs.Calculator,
	cfg Config,
) (*Service, error) {
	if cfg.RetirementThreshold < 1 {
		return nil, fmt.Errorf("retirement threshold must be >= 1, got %d", cfg.RetirementThreshold)
	}
	if cfg.RecentEventsWindow < 3 {
		cfg.RecentEventsWindow = DefaultConfig().RecentEventsWindow
	}

	return &Service{
		states:  states,
		events:  events,
		content: content,
		modes:   modes,
		tx:      tx,
		calc:    calc,
		clock:   systemClock{},
		log:     log.With("service", "review"),
		cfg:     cfg,
	}, nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// studyMode loads the caller's study mode configuration.
func (s *Service) studyMode(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error) {
	cfg, err := s.modes.Get(ctx, userID)
	if err != nil {
		return domain.StudyModeConfig{}, domain.StoreError("get study mode", err)
	}
	return cfg, nil
}
