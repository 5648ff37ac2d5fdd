// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and answers the client
// with a static, user-facing message. The underlying error never reaches
// the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs at error level and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err, http.StatusInternalServerError)...)
	write(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at warn level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err, http.StatusBadRequest)...)
	write(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogForbidden logs at warn level and responds 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err, http.StatusForbidden)...)
	write(w, r, http.StatusForbidden, userMsg, backURL)
}

// LogNotFound logs at info level and responds 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, err, http.StatusNotFound)...)
	write(w, r, http.StatusNotFound, userMsg, backURL)
}

// LogConflict logs at info level and responds 409.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, err, http.StatusConflict)...)
	write(w, r, http.StatusConflict, userMsg, backURL)
}

// LogUnprocessable logs at warn level and responds 422. Used for terminal
// missing-data conditions such as an admin without a building.
func (e *ErrorLogger) LogUnprocessable(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err, http.StatusUnprocessableEntity)...)
	write(w, r, http.StatusUnprocessableEntity, userMsg, backURL)
}

func (e *ErrorLogger) fields(r *http.Request, err error, status int) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}
