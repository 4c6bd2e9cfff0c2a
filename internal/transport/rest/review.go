package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/preview"
	"github.com/heartmarshall/reviewengine/internal/service/review"
	"github.com/heartmarshall/reviewengine/internal/service/review/srs"
)

type reviewService interface {
	RecordReview(ctx context.Context, input review.RecordReviewInput) (*review.RecordReviewResult, error)
	RetireItem(ctx context.Context, input review.RetireItemInput) error
	GetDueItems(ctx context.Context, input review.GetDueItemsInput) ([]domain.ContentRef, error)
	GetDuePrioritized(ctx context.Context, input review.DueListInput) ([]review.PrioritizedItem, error)
	GetDueBalanced(ctx context.Context, input review.DueListInput) ([]domain.ContentRef, error)
	AnalyzePerformance(ctx context.Context, input review.AnalyzePerformanceInput) (*review.PerformanceReport, error)
}

type previewService interface {
	PreviewAll(ctx context.Context, input preview.Input) (*preview.Result, error)
}

const defaultDueLimit = 50

// ReviewHandler serves grading, due lists, performance and previews.
type ReviewHandler struct {
	reviews  reviewService
	previews previewService
	log      *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews reviewService, previews previewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, previews: previews, log: logger.With("handler", "review")}
}

type recordReviewRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	// Grade is a number (0..3) or a grade name ("GOOD").
	Grade json.RawMessage `json:"grade"`
}

type contentRefResponse struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

type reviewStateResponse struct {
	contentRefResponse
	Stability             float64   `json:"stability"`
	Difficulty            float64   `json:"difficulty"`
	ScheduledIntervalDays int       `json:"scheduled_interval_days"`
	DueAt                 time.Time `json:"due_at"`
	LastGrade             string    `json:"last_grade,omitempty"`
	ConsecutiveGoodOrEasy int       `json:"consecutive_good_or_easy"`
	TotalReviews          int       `json:"total_reviews"`
	Lapses                int       `json:"lapses"`
	LastReviewedAt        time.Time `json:"last_reviewed_at"`
}

type retirementResponse struct {
	StreakCount  int    `json:"streak_count"`
	StreakGrade  string `json:"streak_grade"`
	IntervalDays int    `json:"interval_days"`
}

type recordReviewResponse struct {
	State               reviewStateResponse `json:"state"`
	RetirementSuggested bool                `json:"retirement_suggested"`
	Suggestion          *retirementResponse `json:"suggestion,omitempty"`
}

// RecordReview handles POST /api/reviews.
func (h *ReviewHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	var req recordReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.reviews.RecordReview(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := recordReviewResponse{
		State:               toReviewStateResponse(result.State),
		RetirementSuggested: result.RetirementSuggested,
	}
	if s := result.Suggestion; s != nil {
		resp.Suggestion = &retirementResponse{
			StreakCount:  s.StreakCount,
			StreakGrade:  s.StreakGrade.String(),
			IntervalDays: s.IntervalDays,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RetireItem handles DELETE /api/reviews/{type}/{id}.
func (h *ReviewHandler) RetireItem(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.reviews.RetireItem(r.Context(), review.RetireItemInput{Ref: ref}); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DueItems handles GET /api/reviews/due?type=&as_of=&limit=.
func (h *ReviewHandler) DueItems(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryTime(r, "as_of")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	refs, err := h.reviews.GetDueItems(r.Context(), review.GetDueItemsInput{
		Type:  domain.ContentType(strings.ToUpper(r.URL.Query().Get("type"))),
		AsOf:  asOf,
		Limit: limit,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toRefResponses(refs)})
}

type prioritizedResponse struct {
	contentRefResponse
	DueAt       time.Time `json:"due_at"`
	OverdueDays int       `json:"overdue_days"`
	Score       float64   `json:"score"`
}

// DuePrioritized handles GET /api/reviews/due/prioritized?limit=.
func (h *ReviewHandler) DuePrioritized(w http.ResponseWriter, r *http.Request) {
	input, err := dueListInput(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items, err := h.reviews.GetDuePrioritized(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]prioritizedResponse, len(items))
	for i, it := range items {
		resp[i] = prioritizedResponse{
			contentRefResponse: toRefResponse(it.Ref),
			DueAt:              it.DueAt,
			OverdueDays:        it.OverdueDays,
			Score:              it.Score,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

// DueBalanced handles GET /api/reviews/due/balanced?limit=.
func (h *ReviewHandler) DueBalanced(w http.ResponseWriter, r *http.Request) {
	input, err := dueListInput(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	refs, err := h.reviews.GetDueBalanced(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toRefResponses(refs)})
}

type performanceResponse struct {
	contentRefResponse
	Pattern     string   `json:"pattern"`
	SuccessRate float64  `json:"success_rate"`
	Grades      []string `json:"grades"`
}

// Performance handles GET /api/reviews/{type}/{id}/performance.
func (h *ReviewHandler) Performance(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	report, err := h.reviews.AnalyzePerformance(r.Context(), review.AnalyzePerformanceInput{Ref: ref})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	grades := make([]string, len(report.Grades))
	for i, g := range report.Grades {
		grades[i] = g.String()
	}
	writeJSON(w, http.StatusOK, performanceResponse{
		contentRefResponse: toRefResponse(report.Ref),
		Pattern:            report.Pattern.String(),
		SuccessRate:        report.SuccessRate,
		Grades:             grades,
	})
}

type previewResponse struct {
	Grade         string           `json:"grade"`
	Label         string           `json:"label"`
	ScheduledDays int              `json:"scheduled_days"`
	DueDate       time.Time        `json:"due_date"`
	Stability     float64          `json:"stability"`
	Difficulty    float64          `json:"difficulty"`
	Range         srs.DisplayRange `json:"range"`
}

type previewAllResponse struct {
	contentRefResponse
	FirstReview bool              `json:"first_review"`
	Previews    []previewResponse `json:"previews"`
}

// Preview handles GET /api/reviews/{type}/{id}/preview.
func (h *ReviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.previews.PreviewAll(r.Context(), preview.Input{Ref: ref})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := previewAllResponse{
		contentRefResponse: toRefResponse(res.Ref),
		FirstReview:        res.FirstReview,
		Previews:           make([]previewResponse, 0, len(res.Previews)),
	}
	for _, p := range res.Previews {
		resp.Previews = append(resp.Previews, previewResponse{
			Grade:         p.Grade.String(),
			Label:         p.Grade.Label(),
			ScheduledDays: p.ScheduledDays,
			DueDate:       p.DueDate,
			Stability:     p.Stability,
			Difficulty:    p.Difficulty,
			Range:         p.Range,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (req recordReviewRequest) toInput() (review.RecordReviewInput, error) {
	grade, err := parseGrade(req.Grade)
	if err != nil {
		return review.RecordReviewInput{}, err
	}

	input := review.RecordReviewInput{
		Ref:   domain.ContentRef{Type: domain.ContentType(strings.ToUpper(req.ContentType))},
		Grade: grade,
	}
	if req.ContentID != "" {
		id, err := uuid.Parse(req.ContentID)
		if err != nil {
			return review.RecordReviewInput{}, domain.NewValidationError("content_id", "must be a UUID")
		}
		input.Ref.ID = id
	}
	return input, nil
}

// parseGrade accepts a JSON number or a grade name. Out-of-range numbers are
// passed through so the service rejects them as invalid grades.
func parseGrade(raw json.RawMessage) (domain.ReviewGrade, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, domain.NewValidationError("grade", "required")
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return domain.ReviewGrade(n), nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, domain.NewValidationError("grade", "must be a number or a grade name")
	}
	return domain.ParseReviewGrade(name)
}

func dueListInput(r *http.Request) (review.DueListInput, error) {
	asOf, err := queryTime(r, "as_of")
	if err != nil {
		return review.DueListInput{}, err
	}
	limit, err := queryInt(r, "limit", defaultDueLimit)
	if err != nil {
		return review.DueListInput{}, err
	}
	return review.DueListInput{AsOf: asOf, Limit: limit}, nil
}

func toRefResponse(ref domain.ContentRef) contentRefResponse {
	return contentRefResponse{ContentType: ref.Type.String(), ContentID: ref.ID.String()}
}

func toRefResponses(refs []domain.ContentRef) []contentRefResponse {
	resp := make([]contentRefResponse, len(refs))
	for i, ref := range refs {
		resp[i] = toRefResponse(ref)
	}
	return resp
}

func toReviewStateResponse(s *domain.ReviewState) reviewStateResponse {
	resp := reviewStateResponse{
		contentRefResponse:    toRefResponse(s.Ref),
		Stability:             s.Stability,
		Difficulty:            s.Difficulty,
		ScheduledIntervalDays: s.ScheduledIntervalDays,
		DueAt:                 s.DueAt,
		ConsecutiveGoodOrEasy: s.ConsecutiveGoodOrEasy,
		TotalReviews:          s.TotalReviews,
		Lapses:                s.Lapses,
		LastReviewedAt:        s.LastReviewedAt,
	}
	if s.LastGrade != nil {
		resp.LastGrade = s.LastGrade.String()
	}
	return resp
}
