package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/studymode"
)

type studyModeService interface {
	Current(ctx context.Context) (*studymode.Current, error)
	Update(ctx context.Context, input studymode.UpdateInput) (*studymode.Current, error)
}

// StudyModeHandler serves the caller's study mode preferences.
type StudyModeHandler struct {
	svc studyModeService
	log *slog.Logger
}

// NewStudyModeHandler creates a StudyModeHandler.
func NewStudyModeHandler(svc studyModeService, logger *slog.Logger) *StudyModeHandler {
	return &StudyModeHandler{svc: svc, log: logger.With("handler", "study_mode")}
}

type studyModeRequest struct {
	Mode                string     `json:"mode"`
	ExamDate            *time.Time `json:"exam_date"`
	AutoAdjust          bool       `json:"auto_adjust"`
	MaxIntervalDays     *int       `json:"max_interval_days"`
	EnableFlashcards    bool       `json:"enable_flashcards"`
	EnableErrorNotebook bool       `json:"enable_error_notebook"`
}

type studyModeResponse struct {
	Mode                string     `json:"mode"`
	ExamDate            *time.Time `json:"exam_date,omitempty"`
	AutoAdjust          bool       `json:"auto_adjust"`
	MaxIntervalOverride *int       `json:"max_interval_override,omitempty"`
	EnableFlashcards    bool       `json:"enable_flashcards"`
	EnableErrorNotebook bool       `json:"enable_error_notebook"`
	EffectiveMode       string     `json:"effective_mode"`
	MaxIntervalDays     int        `json:"max_interval_days"`
	TargetRetention     float64    `json:"target_retention"`
	DaysUntilExam       *int       `json:"days_until_exam,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// Get handles GET /api/study-mode.
func (h *StudyModeHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur, err := h.svc.Current(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudyModeResponse(cur))
}

// Put handles PUT /api/study-mode. The body replaces every preference.
func (h *StudyModeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req studyModeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	cur, err := h.svc.Update(r.Context(), studymode.UpdateInput{
		Mode:                domain.StudyMode(strings.ToUpper(req.Mode)),
		ExamDate:            req.ExamDate,
		AutoAdjust:          req.AutoAdjust,
		MaxIntervalDays:     req.MaxIntervalDays,
		EnableFlashcards:    req.EnableFlashcards,
		EnableErrorNotebook: req.EnableErrorNotebook,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudyModeResponse(cur))
}

func toStudyModeResponse(cur *studymode.Current) studyModeResponse {
	cfg := cur.Config
	resp := studyModeResponse{
		Mode:                cfg.Mode.String(),
		ExamDate:            cfg.ExamDate,
		AutoAdjust:          cfg.AutoAdjust,
		MaxIntervalOverride: cfg.MaxIntervalOverride,
		EnableFlashcards:    cfg.EnableFlashcards,
		EnableErrorNotebook: cfg.EnableErrorNotebook,
		EffectiveMode:       cur.EffectiveMode.String(),
		MaxIntervalDays:     cur.MaxIntervalDays,
		TargetRetention:     cur.TargetRetention,
		DaysUntilExam:       cur.DaysUntilExam,
	}
	if !cfg.UpdatedAt.IsZero() {
		resp.UpdatedAt = &cfg.UpdatedAt
	}
	return resp
}
