package response

import (
	"errors"
	"net/http"

	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/logger"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
	domain.KindInternal:       http.StatusInternalServerError,
}

func statusFromKind(kind domain.ErrKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteError renders err in the error envelope. Anything that is not a
// *domain.Error becomes a bare 500. Causes go to the log, never to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	payload := ErrorPayload{
		Code:      "internal_error",
		Message:   "internal error",
		RequestID: RequestIDFromContext(r),
	}
	status := http.StatusInternalServerError

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		payload.Code, payload.Message, payload.Meta = de.Code, de.Message, de.Meta
	}

	logError(r, status, payload.Code, err)

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	WriteJSON(w, status, ErrorBody{Error: payload})
}

func logError(r *http.Request, status int, code string, err error) {
	l := logger.WithCtx(r.Context())
	ev := l.Debug()
	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}
	ev.Err(err).
		Int("status", status).
		Str("code", code).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
}
