// Package respond writes JSON responses and keeps internal error details
// (upstream bodies, tokens) out of them.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"notioner/internal/observability/logging"
)

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Message writes {"error": msg}.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"error": msg})
}

// Error writes {"error": err.Error()}. Use only for errors safe to show.
func Error(w http.ResponseWriter, code int, err error) {
	Message(w, code, err.Error())
}

// safeFragments mark validation style messages that may be returned as-is.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"at least",
	"too long",
	"too large",
}

// SafeError returns validation messages as-is and replaces anything else,
// and every 5xx, with "internal server error". Replaced errors are logged
// with secrets masked.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if code < 500 && isSafe(msg) {
		Message(w, code, msg)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Message(w, code, "internal server error")
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range safeFragments {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the internal error message, or the user message without one.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// Fail writes err for request r. An AppError answers with its code and user
// message; its cause is logged with the request id when the code is 5xx.
// Any other error falls back to SafeError with code.
func Fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		SafeError(w, code, err)
		return
	}
	if appErr.Err != nil && appErr.Code >= 500 {
		logging.WithRequestID(r.Context(), slog.Default()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("code", appErr.Code),
			slog.String("user_message", appErr.UserMsg),
			slog.String("error", SanitizeError(appErr.Err)))
	}
	Message(w, appErr.Code, appErr.UserMsg)
}
