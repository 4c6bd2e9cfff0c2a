package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/preview"
	"github.com/heartmarshall/reviewengine/internal/service/review"
	"github.com/heartmarshall/reviewengine/internal/service/session"
	"github.com/heartmarshall/reviewengine/internal/service/studymode"
)

var (
	_ reviewService    = &reviewServiceMock{}
	_ previewService   = &previewServiceMock{}
	_ studyModeService = &studyModeServiceMock{}
	_ sessionService   = &sessionServiceMock{}
)

type reviewServiceMock struct {
	RecordReviewFunc       func(ctx context.Context, input review.RecordReviewInput) (*review.RecordReviewResult, error)
	RetireItemFunc         func(ctx context.Context, input review.RetireItemInput) error
	GetDueItemsFunc        func(ctx context.Context, input review.GetDueItemsInput) ([]domain.ContentRef, error)
	GetDuePrioritizedFunc  func(ctx context.Context, input review.DueListInput) ([]review.PrioritizedItem, error)
	GetDueBalancedFunc     func(ctx context.Context, input review.DueListInput) ([]domain.ContentRef, error)
	AnalyzePerformanceFunc func(ctx context.Context, input review.AnalyzePerformanceInput) (*review.PerformanceReport, error)
}

func (m *reviewServiceMock) RecordReview(ctx context.Context, input review.RecordReviewInput) (*review.RecordReviewResult, error) {
	return m.RecordReviewFunc(ctx, input)
}

func (m *reviewServiceMock) RetireItem(ctx context.Context, input review.RetireItemInput) error {
	return m.RetireItemFunc(ctx, input)
}

func (m *reviewServiceMock) GetDueItems(ctx context.Context, input review.GetDueItemsInput) ([]domain.ContentRef, error) {
	return m.GetDueItemsFunc(ctx, input)
}

func (m *reviewServiceMock) GetDuePrioritized(ctx context.Context, input review.DueListInput) ([]review.PrioritizedItem, error) {
	return m.GetDuePrioritizedFunc(ctx, input)
}

func (m *reviewServiceMock) GetDueBalanced(ctx context.Context, input review.DueListInput) ([]domain.ContentRef, error) {
	return m.GetDueBalancedFunc(ctx, input)
}

func (m *reviewServiceMock) AnalyzePerformance(ctx context.Context, input review.AnalyzePerformanceInput) (*review.PerformanceReport, error) {
	return m.AnalyzePerformanceFunc(ctx, input)
}

type previewServiceMock struct {
	PreviewAllFunc func(ctx context.Context, input preview.Input) (*preview.Result, error)
}

func (m *previewServiceMock) PreviewAll(ctx context.Context, input preview.Input) (*preview.Result, error) {
	return m.PreviewAllFunc(ctx, input)
}

type studyModeServiceMock struct {
	CurrentFunc func(ctx context.Context) (*studymode.Current, error)
	UpdateFunc  func(ctx context.Context, input studymode.UpdateInput) (*studymode.Current, error)
}

func (m *studyModeServiceMock) Current(ctx context.Context) (*studymode.Current, error) {
	return m.CurrentFunc(ctx)
}

func (m *studyModeServiceMock) Update(ctx context.Context, input studymode.UpdateInput) (*studymode.Current, error) {
	return m.UpdateFunc(ctx, input)
}

type sessionServiceMock struct {
	StartFunc   func(ctx context.Context, input session.StartInput) (*session.View, error)
	AdvanceFunc func(ctx context.Context, input session.AdvanceInput) (*session.View, error)
	AnswerFunc  func(ctx context.Context, input session.AnswerInput) (*domain.SessionProgress, error)
	EndFunc     func(ctx context.Context, sessionID uuid.UUID) error
}

func (m *sessionServiceMock) Start(ctx context.Context, input session.StartInput) (*session.View, error) {
	return m.StartFunc(ctx, input)
}

func (m *sessionServiceMock) Advance(ctx context.Context, input session.AdvanceInput) (*session.View, error) {
	return m.AdvanceFunc(ctx, input)
}

func (m *sessionServiceMock) Answer(ctx context.Context, input session.AnswerInput) (*domain.SessionProgress, error) {
	return m.AnswerFunc(ctx, input)
}

func (m *sessionServiceMock) End(ctx context.Context, sessionID uuid.UUID) error {
	return m.EndFunc(ctx, sessionID)
}
