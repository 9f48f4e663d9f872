package web

// errors.go turns errors into responses. The technical error is logged with
// the request ID; the client gets the mapped user message and code, as JSON
// for API clients or as an HTML page for browsers submitting the form.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/locsort/internal/core"
	"github.com/JonMunkholm/locsort/internal/logging"
	"github.com/JonMunkholm/locsort/internal/table"
	"github.com/JonMunkholm/locsort/internal/tableio"
	"github.com/JonMunkholm/locsort/internal/web/templates"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = errors.New("file too large")
	errBadRequest   = errors.New("invalid request body")
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var cnf *table.ColumnNotFoundError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &cnf):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes), errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyJobs):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, tableio.ErrUnsupportedFormat),
		errors.Is(err, tableio.ErrEmptySource),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case core.IsUserFacing(err):
		// parse failures such as "invalid csv" or a missing worksheet
		if code := core.MapError(err).Code; strings.HasPrefix(code, "FILE") {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", userErr.Technical.Error(),
		"code", userMsg.Code,
	}
	if status >= 500 {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	if errors.Is(err, core.ErrTooManyJobs) {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeErrorJSON(w, r, userMsg, status)
		return
	}
	respondErrorHTML(w, r, userMsg, status)
}

func writeErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}); err != nil {
		logging.FromContext(r.Context()).Warn("json encode error", "error", err)
	}
}

func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render error page", "error", err)
	}
}

// wantsJSON prefers JSON unless the client asked for HTML, which is what a
// browser submitting the upload form does.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
