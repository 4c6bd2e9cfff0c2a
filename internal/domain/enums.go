package domain

import (
	"fmt"
	"strings"
)

// ContentType identifies which content domain owns a reviewable item.
type ContentType string

const (
	ContentTypeFlashcard     ContentType = "FLASHCARD"
	ContentTypeQuestion      ContentType = "QUESTION"
	ContentTypeErrorNotebook ContentType = "ERROR_NOTEBOOK"
)

func (c ContentType) String() string { return string(c) }

func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeFlashcard, ContentTypeQuestion, ContentTypeErrorNotebook:
		return true
	}
	return false
}

// ContentTypes returns every content type in a stable order.
func ContentTypes() []ContentType {
	return []ContentType{ContentTypeQuestion, ContentTypeFlashcard, ContentTypeErrorNotebook}
}

// ReviewGrade is the user's self-assessed recall quality.
// The numeric values are part of the public contract (AGAIN=0 .. EASY=3).
type ReviewGrade int

const (
	ReviewGradeAgain ReviewGrade = 0
	ReviewGradeHard  ReviewGrade = 1
	ReviewGradeGood  ReviewGrade = 2
	ReviewGradeEasy  ReviewGrade = 3
)

// gradeInfo is the single lookup for grade names and display labels.
var gradeInfo = [...]struct {
	name  string
	label string
}{
	ReviewGradeAgain: {name: "AGAIN", label: "Again"},
	ReviewGradeHard:  {name: "HARD", label: "Hard"},
	ReviewGradeGood:  {name: "GOOD", label: "Good"},
	ReviewGradeEasy:  {name: "EASY", label: "Easy"},
}

func (g ReviewGrade) String() string {
	if !g.IsValid() {
		return fmt.Sprintf("ReviewGrade(%d)", int(g))
	}
	return gradeInfo[g].name
}

// Label returns the user-facing label for the grade.
func (g ReviewGrade) Label() string {
	if !g.IsValid() {
		return ""
	}
	return gradeInfo[g].label
}

func (g ReviewGrade) IsValid() bool {
	return g >= ReviewGradeAgain && g <= ReviewGradeEasy
}

// IsGoodOrEasy reports whether the grade extends a correct-answer streak.
func (g ReviewGrade) IsGoodOrEasy() bool {
	return g == ReviewGradeGood || g == ReviewGradeEasy
}

// ReviewGrades returns all grades in ascending order.
func ReviewGrades() []ReviewGrade {
	return []ReviewGrade{ReviewGradeAgain, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy}
}

// ParseReviewGrade accepts either the grade name ("GOOD", case-insensitive)
// or its numeric value ("2").
func ParseReviewGrade(s string) (ReviewGrade, error) {
	s = strings.TrimSpace(s)
	for _, g := range ReviewGrades() {
		if strings.EqualFold(s, gradeInfo[g].name) || s == fmt.Sprint(int(g)) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

// StudyMode bounds how far apart reviews may be scheduled.
type StudyMode string

const (
	StudyModeCramming  StudyMode = "CRAMMING"
	StudyModeIntensive StudyMode = "INTENSIVE"
	StudyModeBalanced  StudyMode = "BALANCED"
	StudyModeRelaxed   StudyMode = "RELAXED"
)

func (m StudyMode) String() string { return string(m) }

func (m StudyMode) IsValid() bool {
	switch m {
	case StudyModeCramming, StudyModeIntensive, StudyModeBalanced, StudyModeRelaxed:
		return true
	}
	return false
}

// MaxIntervalDays returns the longest interval the mode allows.
func (m StudyMode) MaxIntervalDays() int {
	switch m {
	case StudyModeCramming:
		return 15
	case StudyModeIntensive:
		return 30
	case StudyModeRelaxed:
		return 60
	default:
		return 40
	}
}

// TargetRetention returns the recall probability the mode schedules for.
func (m StudyMode) TargetRetention() float64 {
	switch m {
	case StudyModeCramming:
		return 0.95
	case StudyModeIntensive:
		return 0.90
	case StudyModeRelaxed:
		return 0.80
	default:
		return 0.85
	}
}

// PerformancePattern classifies the recent grade history of one item.
type PerformancePattern string

const (
	PatternNew                  PerformancePattern = "new"
	PatternRecentRegression     PerformancePattern = "recent_regression"
	PatternImprovement          PerformancePattern = "improvement"
	PatternRegression           PerformancePattern = "regression"
	PatternOscillating          PerformancePattern = "oscillating"
	PatternConsistentSuccess    PerformancePattern = "consistent_success"
	PatternConsistentDifficulty PerformancePattern = "consistent_difficulty"
	PatternModerate             PerformancePattern = "moderate"
)

func (p PerformancePattern) String() string { return string(p) }
