package review

import (
	"context"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

const (
	minEventsForPattern = 3
	trendWindow         = 3
	highRate            = 0.7
	lowRate             = 0.3
	successRate         = 0.8
	oscillationRate     = 0.5
)

// AnalyzePerformance classifies the item's recent grade history.
func (s *Service) AnalyzePerformance(ctx context.Context, input AnalyzePerformanceInput) (*PerformanceReport, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	events, err := s.events.ListRecent(ctx, userID, input.Ref, s.cfg.RecentEventsWindow)
	if err != nil {
		return nil, domain.StoreError("list recent events", err)
	}

	grades := make([]domain.ReviewGrade, len(events))
	for i, e := range events {
		grades[len(events)-1-i] = e.Grade
	}

	return &PerformanceReport{
		Ref:         input.Ref,
		Pattern:     ClassifyGrades(grades),
		SuccessRate: rate(grades),
		Grades:      grades,
	}, nil
}

// ClassifyGrades detects a pattern in grades ordered oldest first.
func ClassifyGrades(grades []domain.ReviewGrade) domain.PerformancePattern {
	n := len(grades)
	if n < minEventsForPattern {
		return domain.PatternNew
	}

	// Doing well until the last answer.
	if !grades[n-1].IsGoodOrEasy() && grades[n-2].IsGoodOrEasy() && grades[n-3].IsGoodOrEasy() {
		if rate(grades[:n-1]) >= highRate {
			return domain.PatternRecentRegression
		}
	}

	early := rate(grades[:min(trendWindow, n)])
	recent := rate(grades[max(0, n-trendWindow):])
	switch {
	case early <= lowRate && recent >= highRate:
		return domain.PatternImprovement
	case early >= highRate && recent <= lowRate:
		return domain.PatternRegression
	}

	if oscillates(grades) {
		return domain.PatternOscillating
	}

	overall := rate(grades)
	switch {
	case overall >= successRate:
		return domain.PatternConsistentSuccess
	case overall <= lowRate:
		return domain.PatternConsistentDifficulty
	default:
		return domain.PatternModerate
	}
}

// rate is the share of GOOD and EASY grades.
func rate(grades []domain.ReviewGrade) float64 {
	if len(grades) == 0 {
		return 0
	}
	ok := 0
	for _, g := range grades {
		if g.IsGoodOrEasy() {
			ok++
		}
	}
	return float64(ok) / float64(len(grades))
}

// oscillates reports whether success flips in more than half the transitions.
func oscillates(grades []domain.ReviewGrade) bool {
	if len(grades) < 4 {
		return false
	}
	changes := 0
	for i := 1; i < len(grades); i++ {
		if grades[i].IsGoodOrEasy() != grades[i-1].IsGoodOrEasy() {
			changes++
		}
	}
	return float64(changes)/float64(len(grades)-1) > oscillationRate
}
