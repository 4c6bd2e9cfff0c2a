package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/session"
)

type sessionService interface {
	Start(ctx context.Context, input session.StartInput) (*session.View, error)
	Advance(ctx context.Context, input session.AdvanceInput) (*session.View, error)
	Answer(ctx context.Context, input session.AnswerInput) (*domain.SessionProgress, error)
	End(ctx context.Context, sessionID uuid.UUID) error
}

// SessionHandler serves windowed study sessions.
type SessionHandler struct {
	svc sessionService
	log *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.With("handler", "session")}
}

type startSessionRequest struct {
	SequenceID string `json:"sequence_id"`
	// SessionID resumes an existing session instead of starting one.
	SessionID string `json:"session_id"`
}

type advanceRequest struct {
	ToIndex *int `json:"to_index"`
}

type answerRequest struct {
	ContentID string `json:"content_id"`
}

type itemResponse struct {
	Position    int    `json:"position"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
}

type windowStateResponse struct {
	Phase string `json:"phase"`
	Batch *int   `json:"batch,omitempty"`
}

type sessionResponse struct {
	SessionID     string              `json:"session_id"`
	SequenceID    string              `json:"sequence_id"`
	Index         int                 `json:"index"`
	Total         int                 `json:"total"`
	Item          *itemResponse       `json:"item"`
	Answered      bool                `json:"answered"`
	AnsweredCount int                 `json:"answered_count"`
	State         windowStateResponse `json:"state"`
	LoadedBatches []int               `json:"loaded_batches"`
}

type progressResponse struct {
	SessionID    string   `json:"session_id"`
	SequenceID   string   `json:"sequence_id"`
	CurrentIndex int      `json:"current_index"`
	Answered     []string `json:"answered"`
}

// Start handles POST /api/sessions: 201 for a new session, 200 on resume.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var input session.StartInput
	if req.SequenceID != "" {
		id, err := uuid.Parse(req.SequenceID)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("sequence_id", "must be a UUID"))
			return
		}
		input.SequenceID = id
	}
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("session_id", "must be a UUID"))
			return
		}
		input.SessionID = &id
	}

	view, err := h.svc.Start(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := http.StatusCreated
	if input.SessionID != nil {
		status = http.StatusOK
	}
	writeJSON(w, status, toSessionResponse(view))
}

// Advance handles POST /api/sessions/{id}/advance.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req advanceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if req.ToIndex == nil {
		handleError(h.log, w, r, domain.NewValidationError("to_index", "required"))
		return
	}

	view, err := h.svc.Advance(r.Context(), session.AdvanceInput{SessionID: id, ToIndex: *req.ToIndex})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

// Answer handles POST /api/sessions/{id}/answers.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("content_id", "must be a UUID"))
		return
	}

	p, err := h.svc.Answer(r.Context(), session.AnswerInput{SessionID: id, ContentID: contentID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	answered := make([]string, len(p.Answered))
	for i, a := range p.Answered {
		answered[i] = a.String()
	}
	writeJSON(w, http.StatusOK, progressResponse{
		SessionID:    p.SessionID.String(),
		SequenceID:   p.SequenceID.String(),
		CurrentIndex: p.CurrentIndex,
		Answered:     answered,
	})
}

// End handles DELETE /api/sessions/{id}.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := h.svc.End(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(v *session.View) sessionResponse {
	resp := sessionResponse{
		SessionID:     v.SessionID.String(),
		SequenceID:    v.SequenceID.String(),
		Index:         v.Index,
		Total:         v.Total,
		Answered:      v.Answered,
		AnsweredCount: v.AnsweredCount,
		State:         windowStateResponse{Phase: v.State.Phase.String()},
		LoadedBatches: v.LoadedBatches,
	}
	if v.State.Phase == session.PhaseLoading {
		b := v.State.Batch
		resp.State.Batch = &b
	}
	if it := v.Item; it != nil {
		resp.Item = &itemResponse{
			Position:    it.Position,
			ContentType: it.Ref.Type.String(),
			ContentID:   it.Ref.ID.String(),
			Title:       it.Title,
			Body:        it.Body,
		}
	}
	return resp
}
