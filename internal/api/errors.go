package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/logger"
)

var errAsyncUnavailable = &apperrors.AppError{
	Type:          apperrors.ErrorTypeInternal,
	Message:       "Async extraction is not configured",
	StatusCode:    http.StatusServiceUnavailable,
	ErrorCode:     "ASYNC_UNAVAILABLE",
	IsOperational: true,
	Recovery:      "Set REDIS_URL or use POST /api/scrape.",
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Type      apperrors.ErrorType `json:"type"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Recovery  string              `json:"recovery,omitempty"`
}

// writeError answers with the AppError in err's chain, or a 500 for
// anything else. Causes of server errors are logged, not sent.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("Internal server error", "INTERNAL", err)
	}

	attrs := []any{
		"error", err,
		"error_code", appErr.ErrorCode,
		"status", appErr.StatusCode,
		"path", r.URL.Path,
		logger.WithTraceContext(r.Context()),
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", attrs...)
	} else {
		s.logger.WarnContext(r.Context(), "Request rejected", attrs...)
	}

	// Client errors carry their causes so a failed extraction says why.
	message := appErr.Message
	if appErr.StatusCode < http.StatusInternalServerError {
		message = appErr.Error()
	}

	writeJSON(w, appErr.StatusCode, ErrorResponse{
		Type:      appErr.Type,
		Message:   message,
		ErrorCode: appErr.ErrorCode,
		Recovery:  appErr.Recovery,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
