package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"message field", `{"message":"committee not found"}`, 404, "committee not found"},
		{"error field", `{"error":"bad input"}`, 400, "bad input"},
		{"message wins over error", `{"message":"m","error":"e"}`, 400, "m"},
		{"empty message falls through", `{"message":"","error":"e"}`, 400, "e"},
		{"no fields", `{"code":"X"}`, 500, "Request failed with status 500"},
		{"not json", `<html>boom</html>`, 502, "Request failed with status 502"},
		{"empty body", ``, 500, "Request failed with status 500"},
		{"non-string message", `{"message":42}`, 500, "Request failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage([]byte(tt.body), tt.status)
			if got != tt.want {
				t.Errorf("errorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_SessionExpired(t *testing.T) {
	for _, status := range []int{401, 403} {
		for _, body := range []string{``, `{"message":"token expired"}`, `not json at all`} {
			calls := 0
			err := classify(context.Background(), status, []byte(body), func(ctx context.Context) error {
				calls++
				return nil
			})

			if calls != 1 {
				t.Errorf("status %d body %q: handler calls = %d, want 1", status, body, calls)
			}
			if !IsSessionExpired(err) {
				t.Errorf("status %d body %q: IsSessionExpired = false, want true", status, body)
			}
			var se *SessionExpiredError
			if !errors.As(err, &se) {
				t.Fatalf("status %d: error %T is not *SessionExpiredError", status, err)
			}
			if se.Status != status {
				t.Errorf("se.Status = %d, want %d", se.Status, status)
			}
		}
	}
}

func TestClassify_SessionExpired_NilHandler(t *testing.T) {
	err := classify(context.Background(), 401, nil, nil)
	if !IsSessionExpired(err) {
		t.Errorf("IsSessionExpired = false, want true")
	}
}

func TestClassify_SessionExpired_HandlerError(t *testing.T) {
	boom := fmt.Errorf("storage offline")
	err := classify(context.Background(), 403, nil, func(ctx context.Context) error {
		return boom
	})

	// Cleanup failure must not mask the expiry classification.
	if !IsSessionExpired(err) {
		t.Errorf("IsSessionExpired = false, want true")
	}
	if !errors.Is(err, boom) {
		t.Errorf("cleanup error should be preserved in the chain")
	}
}

func TestClassify_GenericError(t *testing.T) {
	calls := 0
	err := classify(context.Background(), 422, []byte(`{"message":"amount invalid"}`), func(ctx context.Context) error {
		calls++
		return nil
	})

	if calls != 0 {
		t.Errorf("handler calls = %d, want 0 for non-expiry status", calls)
	}
	if IsSessionExpired(err) {
		t.Errorf("IsSessionExpired = true, want false")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Status != 422 {
		t.Errorf("apiErr.Status = %d, want 422", apiErr.Status)
	}
	if apiErr.Message != "amount invalid" {
		t.Errorf("apiErr.Message = %q, want %q", apiErr.Message, "amount invalid")
	}
}

func TestIsSessionExpired_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("load draws: %w", &SessionExpiredError{Status: 401})
	if !IsSessionExpired(wrapped) {
		t.Errorf("IsSessionExpired(wrapped) = false, want true")
	}
	if IsSessionExpired(errors.New("plain")) {
		t.Errorf("IsSessionExpired(plain) = true, want false")
	}
	if IsSessionExpired(nil) {
		t.Errorf("IsSessionExpired(nil) = true, want false")
	}
}
