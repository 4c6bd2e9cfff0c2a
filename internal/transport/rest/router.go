package rest

import (
	"net/http"

	"github.com/heartmarshall/reviewengine/internal/transport/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Health    *HealthHandler
	Review    *ReviewHandler
	StudyMode *StudyModeHandler
	Session   *SessionHandler
}

// NewRouter mounts the probes unauthenticated and the API behind api.
func NewRouter(h Handlers, api middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	apiMux := http.NewServeMux()

	apiMux.HandleFunc("POST /api/reviews", h.Review.RecordReview)
	apiMux.HandleFunc("GET /api/reviews/due", h.Review.DueItems)
	apiMux.HandleFunc("GET /api/reviews/due/prioritized", h.Review.DuePrioritized)
	apiMux.HandleFunc("GET /api/reviews/due/balanced", h.Review.DueBalanced)
	apiMux.HandleFunc("DELETE /api/reviews/{type}/{id}", h.Review.RetireItem)
	apiMux.HandleFunc("GET /api/reviews/{type}/{id}/performance", h.Review.Performance)
	apiMux.HandleFunc("GET /api/reviews/{type}/{id}/preview", h.Review.Preview)

	apiMux.HandleFunc("GET /api/study-mode", h.StudyMode.Get)
	apiMux.HandleFunc("PUT /api/study-mode", h.StudyMode.Put)

	apiMux.HandleFunc("POST /api/sessions", h.Session.Start)
	apiMux.HandleFunc("POST /api/sessions/{id}/advance", h.Session.Advance)
	apiMux.HandleFunc("POST /api/sessions/{id}/answers", h.Session.Answer)
	apiMux.HandleFunc("DELETE /api/sessions/{id}", h.Session.End)

	mux.Handle("/api/", api(apiMux))

	return mux
}
