package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

// serveRequestID returns the id the handler saw and the id echoed back.
func serveRequestID(incoming string) (inCtx, echoed string) {
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = ctxutil.RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return inCtx, rec.Header().Get(RequestIDHeader)
}

func TestRequestID_KeepsWellFormed(t *testing.T) {
	for _, incoming := range []string{
		uuid.NewString(),
		"lb-7f3a:0001",
		strings.Repeat("z", maxRequestIDLen),
	} {
		inCtx, echoed := serveRequestID(incoming)
		if inCtx != incoming || echoed != incoming {
			t.Errorf("incoming %q: ctx %q, header %q", incoming, inCtx, echoed)
		}
	}
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	for _, incoming := range []string{
		"",
		"has space",
		"line\nbreak",
		"café",
		strings.Repeat("x", maxRequestIDLen+1),
	} {
		inCtx, echoed := serveRequestID(incoming)
		if inCtx != echoed {
			t.Errorf("incoming %q: ctx %q differs from header %q", incoming, inCtx, echoed)
		}
		if _, err := uuid.Parse(echoed); err != nil {
			t.Errorf("incoming %q: want generated uuid, got %q", incoming, echoed)
		}
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	a, _ := serveRequestID("")
	b, _ := serveRequestID("")
	if a == b {
		t.Errorf("two requests share id %q", a)
	}
}
