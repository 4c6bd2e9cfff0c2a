package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remote string, userID *uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", nil)
	req.RemoteAddr = remote
	if userID != nil {
		req = req.WithContext(ctxutil.WithUserID(req.Context(), *userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsBurst(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(1, 10).Limit()(okHandler())

	for i := range 10 {
		rec := hit(h, "1.2.3.4:1234", nil)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(0.5, 5).Limit()(okHandler())

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234", nil).Code)
	}

	rec := hit(h, "1.2.3.4:1234", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_ClientsIndependent(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(0.1, 2).Limit()(okHandler())

	for range 2 {
		hit(h, "1.1.1.1:1234", nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.1.1.1:4321", nil).Code, "port does not matter")
	assert.Equal(t, http.StatusOK, hit(h, "2.2.2.2:5678", nil).Code)
}

func TestRateLimiter_KeysByUser(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(0.1, 1).Limit()(okHandler())
	alice, bob := uuid.New(), uuid.New()

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", &alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1", &alice).Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", &bob).Code, "same IP, other user")
}

func TestRateLimiter_Refill(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(20, 1).Limit()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "3.3.3.3:1234", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "3.3.3.3:1234", nil).Code)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(h, "3.3.3.3:1234", nil).Code)
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(0, 0).Limit()(okHandler())
	for range 100 {
		assert.Equal(t, http.StatusOK, hit(h, "4.4.4.4:1", nil).Code)
	}
}

func TestRateLimiter_ActiveClientKeepsBucket(t *testing.T) {
	t.Parallel()

	const idle = 200 * time.Millisecond
	h := newRateLimiter(0.01, 1, idle).Limit()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "5.6.7.8:1", nil).Code)

	// Rejected requests keep the client active, so the spent bucket is
	// never replaced by a fresh one.
	deadline := time.Now().Add(3 * idle)
	for time.Now().Before(deadline) {
		time.Sleep(idle / 4)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "5.6.7.8:1", nil).Code)
	}
}

func TestRateLimiter_IdleClientStartsOver(t *testing.T) {
	t.Parallel()

	const idle = 50 * time.Millisecond
	h := newRateLimiter(0.01, 1, idle).Limit()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "5.6.7.9:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "5.6.7.9:1", nil).Code)

	time.Sleep(3 * idle)
	assert.Equal(t, http.StatusOK, hit(h, "5.6.7.9:1", nil).Code)
}
