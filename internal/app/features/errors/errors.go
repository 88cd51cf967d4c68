// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ErrorLogger converts collaborator failures into logged redirects. No store
// or provider error reaches the client as a raw message or a 5xx page; the
// user lands back on the originating form with a short message instead.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a client-side problem (bad form data and the like) and
// redirects to the given location with userMsg in the error query parameter.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, redirect string) {
	e.log.Warn("bad request",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Redirect(w, r, withErrorParam(redirect, userMsg), http.StatusSeeOther)
}

// LogServerError logs a store or provider failure and redirects to the given
// location with userMsg in the error query parameter.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, redirect string) {
	e.log.Error("server error",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Redirect(w, r, withErrorParam(redirect, userMsg), http.StatusSeeOther)
}

func withErrorParam(redirect, userMsg string) string {
	if userMsg == "" {
		return redirect
	}
	sep := "?"
	if strings.Contains(redirect, "?") {
		sep = "&"
	}
	return redirect + sep + "error=" + url.QueryEscape(userMsg)
}
