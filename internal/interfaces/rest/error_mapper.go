package rest

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
)

// WriteError maps application errors to HTTP responses. Server-side failures
// are logged with the underlying cause; the client only sees the message.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	message := err.Error()
	if svcErr, ok := application.IsServiceError(err); ok && statusCode >= http.StatusInternalServerError {
		message = svcErr.Message
	}
	if statusCode >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "code", errorCode, "error", err)
	}

	WriteJSON(w, statusCode, &APIError{
		Code:    errorCode,
		Message: message,
	})
}
