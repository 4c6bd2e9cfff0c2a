// Package preview answers "if I pick this grade, when will I see the item again"
// without touching persisted state.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/review/srs"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

type stateReader interface {
	Get(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (*domain.ReviewState, error)
}

type modeProvider interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.StudyModeConfig, error)
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service computes per-grade previews.
type Service struct {
	states stateReader
	modes  modeProvider
	calc   *srs.Calculator
	clock  clock
	log    *slog.Logger
}

// NewService creates a new preview service.
func NewService(log *slog.Logger, states stateReader, modes modeProvider, calc *srs.Calculator) *Service {
	return &Service{
		states: states,
		modes:  modes,
		calc:   calc,
		clock:  systemClock{},
		log:    log.With("service", "preview"),
	}
}

// Preview is the outcome of one hypothetical grade.
type Preview struct {
	Grade         domain.ReviewGrade
	ScheduledDays int
	DueDate       time.Time
	Stability     float64
	Difficulty    float64
	Range         srs.DisplayRange
}

// Result holds one preview per grade, indexed by grade.
type Result struct {
	Ref      domain.ContentRef
	Previews [4]Preview
	// FirstReview is true when the item has no review state yet.
	FirstReview bool
}

// For returns the preview for g.
func (r *Result) For(g domain.ReviewGrade) Preview {
	return r.Previews[g]
}

// Input holds the parameters for PreviewAll.
type Input struct {
	Ref domain.ContentRef
}

// Validate checks all fields and collects all errors.
func (i *Input) Validate() error {
	if errs := i.Ref.Validate(); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PreviewAll runs the schedule calculator once per grade against the same
// state snapshot and the caller's current study mode. Nothing is written.
func (s *Service) PreviewAll(ctx context.Context, input Input) (*Result, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	current, err := s.states.Get(ctx, userID, input.Ref)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		current = nil
	case err != nil:
		return nil, domain.StoreError("get review state", err)
	}

	cfg, err := s.modes.Get(ctx, userID)
	if err != nil {
		return nil, domain.StoreError("get study mode", err)
	}

	now := s.clock.Now().UTC()
	res := &Result{Ref: input.Ref, FirstReview: current == nil}

	for _, g := range domain.ReviewGrades() {
		var snapshot *domain.ReviewState
		if current != nil {
			cp := *current
			snapshot = &cp
		}
		next := s.calc.ComputeNext(userID, input.Ref, snapshot, g, now, cfg)
		res.Previews[g] = Preview{
			Grade:         g,
			ScheduledDays: next.ScheduledIntervalDays,
			DueDate:       next.DueAt,
			Stability:     next.Stability,
			Difficulty:    next.Difficulty,
			Range:         srs.RangeFor(g, next.ScheduledIntervalDays),
		}
	}

	s.log.DebugContext(ctx, "review previewed",
		slog.String("user_id", userID.String()),
		slog.String("content", input.Ref.String()),
		slog.Bool("first_review", res.FirstReview),
	)

	return res, nil
}
