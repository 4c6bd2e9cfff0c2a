// Package rest exposes the review engine over JSON HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/pkg/ctxutil"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// handleError maps a service error onto a status code and error envelope.
// 5xx responses are logged; the client gets no internal detail.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("code", code),
			slog.String("path", r.URL.Path),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			slog.String("error", err.Error()),
		)
	}

	detail := errorDetail{Code: code, Message: publicMessage(status, err)}
	var ve *domain.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			detail.Fields = append(detail.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	writeJSON(w, status, errorBody{Error: detail})
}

// classify checks not-found before batch fetch failure: an unknown sequence
// surfaces as a failed fetch wrapping ErrNotFound.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidGrade):
		return http.StatusBadRequest, "INVALID_GRADE"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrContentNotFound):
		return http.StatusNotFound, "CONTENT_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrBatchFetchFailed):
		return http.StatusServiceUnavailable, "BATCH_FETCH_FAILED"
	case errors.Is(err, domain.ErrStateStoreUnavailable):
		return http.StatusServiceUnavailable, "STATE_STORE_UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func publicMessage(status int, err error) string {
	switch {
	case status == http.StatusBadRequest:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return err.Error()
	case status >= http.StatusInternalServerError:
		return strings.ToLower(http.StatusText(status))
	default:
		return err.Error()
	}
}

// decodeJSON reads a single JSON object from the request body. Unknown
// fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

// pathRef reads a content reference from the {type} and {id} path segments.
// The type is case-insensitive.
func pathRef(r *http.Request) (domain.ContentRef, error) {
	id, err := pathUUID(r, "id")
	if err != nil {
		return domain.ContentRef{}, err
	}
	return domain.ContentRef{
		Type: domain.ContentType(strings.ToUpper(r.PathValue("type"))),
		ID:   id,
	}, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates (midnight UTC).
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(name, fmt.Sprintf("must be RFC 3339 or %s", time.DateOnly))
}
