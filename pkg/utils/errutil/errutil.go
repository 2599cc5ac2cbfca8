package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

// ErrorResponse is the JSON body returned for every API failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handle logs the error with a message and reports it to Sentry when a client
// is configured. The error is returned unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logging.From(ctx).Error(msg, errorAttrs(err)...)
	capture(ctx, err)

	return err
}

// HandleHTTP logs err and writes message as a JSON error body with statusCode.
// Internal details of err are never written to the client. 5xx errors are
// reported to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, message string) {
	logger := logging.From(ctx)

	if err != nil {
		attrs := append([]any{"status", statusCode}, errorAttrs(err)...)
		if statusCode >= http.StatusInternalServerError {
			logger.Error("HTTP error", attrs...)
			capture(ctx, err)
		} else {
			logger.Warn("HTTP client error", attrs...)
		}
	}

	WriteJSON(ctx, w, statusCode, ErrorResponse{Error: message})
}

// WriteJSON encodes v as the response body with statusCode
func WriteJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.From(ctx).Error("failed to marshal response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write response", slog.Any("error", err))
	}
}

func errorAttrs(err error) []any {
	var ge *goerr.Error
	if errors.As(err, &ge) {
		return []any{
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		}
	}
	return []any{"error", err.Error()}
}

func capture(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.CaptureException(err)
}
