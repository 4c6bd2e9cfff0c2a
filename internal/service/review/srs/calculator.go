package srs

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

const day = 24 * time.Hour

// Calculator turns a grade into the next review state. It never fails.
type Calculator struct {
	policy *Policy
}

// NewCalculator returns a Calculator backed by policy.
func NewCalculator(policy *Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy exposes the grading policy the calculator uses.
func (c *Calculator) Policy() *Policy { return c.policy }

// ComputeNext returns the state after grading at now. current is nil for the
// first review of (userID, ref); the returned state is then newly seeded.
func (c *Calculator) ComputeNext(
	userID uuid.UUID,
	ref domain.ContentRef,
	current *domain.ReviewState,
	grade domain.ReviewGrade,
	now time.Time,
	cfg domain.StudyModeConfig,
) domain.ReviewState {
	delta := c.policy.Delta(grade, current, cfg, now)
	g := grade

	next := domain.ReviewState{
		UserID:                userID,
		Ref:                   ref,
		Stability:             delta.NewStability,
		Difficulty:            delta.NewDifficulty,
		ScheduledIntervalDays: delta.RawIntervalDays,
		DueAt:                 DueAt(now, delta.RawIntervalDays),
		LastGrade:             &g,
		LastReviewedAt:        now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if current == nil {
		next.TotalReviews = 1
		if grade.IsGoodOrEasy() {
			next.ConsecutiveGoodOrEasy = 1
		}
		return next
	}

	next.CreatedAt = current.CreatedAt
	next.TotalReviews = current.TotalReviews + 1
	next.Lapses = current.Lapses
	if grade == domain.ReviewGradeAgain {
		next.Lapses++
	}
	if grade.IsGoodOrEasy() {
		next.ConsecutiveGoodOrEasy = current.ConsecutiveGoodOrEasy + 1
	}
	return next
}

// DueAt returns the due time for an interval computed at now.
func DueAt(now time.Time, intervalDays int) time.Time {
	return now.Add(time.Duration(intervalDays) * day)
}
