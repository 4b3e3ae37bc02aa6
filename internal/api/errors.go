package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/committeehq/committee-client/internal/metrics"
)

// SessionExpiredError signals that the server rejected the auth token with
// 401 or 403. By the time a caller sees this error the registered expiry
// handler has already run, so callers must not surface an additional message.
type SessionExpiredError struct {
	Status int
}

// Error implements error.
func (e *SessionExpiredError) Error() string {
	return "Your session has expired. Please log in again."
}

// APIError is a non-2xx response that is not a session expiry. Message is
// taken from the response body when the server provided one.
type APIError struct {
	Status  int
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return e.Message
}

// IsSessionExpired reports whether err (or anything it wraps) is a
// session-expiry rejection.
func IsSessionExpired(err error) bool {
	var se *SessionExpiredError
	return errors.As(err, &se)
}

// ExpiryHandler is invoked when the server signals session expiry. It runs to
// completion before the error is returned to the caller, so session cleanup is
// ordered ahead of any caller reaction.
type ExpiryHandler func(ctx context.Context) error

// errorMessage extracts a human-readable message from a JSON error body.
// Precedence: "message" field, then "error" field, then a synthesized message.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

// classify turns a non-2xx response into an error. It never returns nil.
//
// 401 and 403 are treated as session expiry: onExpired is awaited exactly once
// and a *SessionExpiredError is returned regardless of body shape. Every other
// status yields an *APIError carrying the extracted message.
func classify(ctx context.Context, status int, body []byte, onExpired ExpiryHandler) error {
	if status == 401 || status == 403 {
		metrics.ObserveSessionExpiry()
		if onExpired != nil {
			if err := onExpired(ctx); err != nil {
				return fmt.Errorf("session expiry cleanup: %w", errors.Join(err, &SessionExpiredError{Status: status}))
			}
		}
		return &SessionExpiredError{Status: status}
	}
	return &APIError{Status: status, Message: errorMessage(body, status)}
}
