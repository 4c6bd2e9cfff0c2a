package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// RecordReview grades one item, persists the new state and appends a history event.
//
// Calls are not idempotent: each one is a distinct event. Concurrent calls for
// the same item are serialized by the state store's row lock, so the second
// call sees the first call's result.
func (s *Service) RecordReview(ctx context.Context, input RecordReviewInput) (*RecordReviewResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.content.Exists(ctx, input.Ref)
	if err != nil {
		return nil, domain.StoreError("check content", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentNotFound, input.Ref)
	}

	cfg, err := s.studyMode(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result RecordReviewResult

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, getErr := s.states.GetForUpdate(txCtx, userID, input.Ref)
		switch {
		case errors.Is(getErr, domain.ErrNotFound):
			current = nil
		case getErr != nil:
			return domain.StoreError("get review state", getErr)
		}

		next := s.calc.ComputeNext(userID, input.Ref, current, input.Grade, now, cfg)

		if putErr := s.states.Put(txCtx, &next); putErr != nil {
			return domain.StoreError("put review state", putErr)
		}

		appendErr := s.events.Append(txCtx, &domain.ReviewEvent{
			ID:                    uuid.New(),
			UserID:                userID,
			Ref:                   input.Ref,
			Grade:                 input.Grade,
			ScheduledIntervalDays: next.ScheduledIntervalDays,
			GradedAt:              now,
		})
		if appendErr != nil {
			return domain.StoreError("append review event", appendErr)
		}

		result.State = &next

		// Fires once per crossing: a longer streak does not suggest again.
		if input.Grade.IsGoodOrEasy() && next.ConsecutiveGoodOrEasy == s.cfg.RetirementThreshold {
			streakGrade, gradeErr := s.streakGrade(txCtx, userID, input.Ref)
			if gradeErr != nil {
				return gradeErr
			}
			result.RetirementSuggested = true
			result.Suggestion = &RetirementSuggestion{
				StreakCount:  next.ConsecutiveGoodOrEasy,
				StreakGrade:  streakGrade,
				IntervalDays: next.ScheduledIntervalDays,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review recorded",
		slog.String("user_id", userID.String()),
		slog.String("content", input.Ref.String()),
		slog.String("grade", input.Grade.String()),
		slog.Int("interval_days", result.State.ScheduledIntervalDays),
		slog.Int("streak", result.State.ConsecutiveGoodOrEasy),
		slog.Bool("retirement_suggested", result.RetirementSuggested),
	)

	return &result, nil
}

// streakGrade is EASY when every grade of the current streak was EASY, GOOD otherwise.
func (s *Service) streakGrade(ctx context.Context, userID uuid.UUID, ref domain.ContentRef) (domain.ReviewGrade, error) {
	recent, err := s.events.ListRecent(ctx, userID, ref, s.cfg.RetirementThreshold)
	if err != nil {
		return 0, domain.StoreError("list recent events", err)
	}
	if len(recent) == 0 {
		return domain.ReviewGradeGood, nil
	}
	for _, e := range recent {
		if e.Grade != domain.ReviewGradeEasy {
			return domain.ReviewGradeGood, nil
		}
	}
	return domain.ReviewGradeEasy, nil
}
