package review

import (
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// RecordReviewResult is the outcome of one grading call.
type RecordReviewResult struct {
	State               *domain.ReviewState
	RetirementSuggested bool
	// Suggestion is set only when RetirementSuggested is true.
	Suggestion *RetirementSuggestion
}

// RetirementSuggestion is advisory; nothing is deleted until RetireItem is called.
type RetirementSuggestion struct {
	StreakCount  int
	StreakGrade  domain.ReviewGrade
	IntervalDays int
}

// PrioritizedItem is one due item with its urgency score.
type PrioritizedItem struct {
	Ref         domain.ContentRef
	DueAt       time.Time
	OverdueDays int
	Score       float64
}

// PerformanceReport classifies an item's recent grade history.
type PerformanceReport struct {
	Ref         domain.ContentRef
	Pattern     domain.PerformancePattern
	SuccessRate float64
	// Grades are oldest first.
	Grades []domain.ReviewGrade
}
