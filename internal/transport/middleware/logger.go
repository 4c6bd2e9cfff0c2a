package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// Logger logs each request with method, path, status, duration and the
// request and user ids found in the context. 5xx responses log at error level.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if userID, ok := sw.userID(); ok {
				attrs = append(attrs, slog.String("user_id", userID))
			}

			level := slog.LevelInfo
			if sw.status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}

// statusWriter captures the response status. Auth runs inside Logger, so the
// user id is reported back through the writer rather than the context.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	user        string
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusWriter) setUserID(id string) { w.user = id }

func (w *statusWriter) userID() (string, bool) { return w.user, w.user != "" }

// userRecorder is implemented by writers that want to learn the caller.
type userRecorder interface {
	setUserID(id string)
}
