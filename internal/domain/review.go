package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewState is the scheduling record of one (user, content) pair.
// It exists only after the first review and is removed only by retirement.
type ReviewState struct {
	UserID                uuid.UUID
	Ref                   ContentRef
	Stability             float64
	Difficulty            float64
	ScheduledIntervalDays int
	DueAt                 time.Time
	LastGrade             *ReviewGrade
	ConsecutiveGoodOrEasy int
	TotalReviews          int
	Lapses                int
	LastReviewedAt        time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsDue reports whether the item must be reviewed at asOf.
func (s *ReviewState) IsDue(asOf time.Time) bool {
	return !s.DueAt.After(asOf)
}

// OverdueDays returns whole days elapsed since DueAt, or 0 when not yet due.
func (s *ReviewState) OverdueDays(asOf time.Time) int {
	if !s.DueAt.Before(asOf) {
		return 0
	}
	return int(asOf.Sub(s.DueAt).Hours() / 24)
}

// ReviewEvent is the append-only history record of one grading call.
type ReviewEvent struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	Ref                   ContentRef
	Grade                 ReviewGrade
	ScheduledIntervalDays int
	GradedAt              time.Time
}

// DueFilter narrows a due-items listing.
type DueFilter struct {
	// Types restricts to the given content types; empty means all.
	Types []ContentType
	AsOf  time.Time
	// Limit caps the result; 0 means no limit.
	Limit int
}

