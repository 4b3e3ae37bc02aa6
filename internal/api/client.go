// Package api is the single entry point for all network calls to the
// committee backend. It owns header construction, JSON encoding/decoding and
// the session-expiry classification of failed responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/committeehq/committee-client/internal/metrics"
	"github.com/committeehq/committee-client/pkg/logger"
)

const maxResponseBytes = 8 << 20

// TokenProvider supplies the current bearer token. An empty string means the
// request is sent unauthenticated.
type TokenProvider func() string

// Client performs JSON requests against the committee backend. All requests
// share one base URL, one timeout and one expiry handler; the handler is fixed
// at construction so there is no window where an expiry can go unhandled.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      TokenProvider
	onExpired  ExpiryHandler
	log        *logger.Logger
}

// Config configures the client.
type Config struct {
	// BaseURL is the API root, e.g. "http://10.255.253.32:4000/api/v1".
	BaseURL string

	// Token supplies the bearer token per request. Optional.
	Token TokenProvider

	// OnSessionExpired runs before a 401/403 is surfaced to the caller.
	// Required: the session layer must react before any UI does.
	OnSessionExpired ExpiryHandler

	Timeout time.Duration
	Logger  *logger.Logger
}

// New creates a client. The expiry handler is mandatory.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.OnSessionExpired == nil {
		return nil, fmt.Errorf("session expiry handler is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("api")
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		onExpired:  cfg.OnSessionExpired,
		log:        log,
	}, nil
}

// Do executes one request and decodes a 2xx JSON body into target.
//
// A nil target discards the body. A 2xx body that is empty or not JSON is
// tolerated: target is left at its zero value and no error is returned. On a
// non-2xx status the response is classified and the resulting error returned;
// there are no retries and no caching at this layer.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, target interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveNetworkFailure()
		c.log.Errorf("%s %s: %v", method, path, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.ObserveRequest(method, trimQuery(path), resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveNetworkFailure()
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnf("%s %s: status %d", method, path, resp.StatusCode)
		return classify(ctx, resp.StatusCode, respBody, c.onExpired)
	}

	c.log.Debugf("%s %s: status %d (%d bytes)", method, path, resp.StatusCode, len(respBody))

	if target == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		// Non-JSON 2xx bodies are tolerated; the caller sees a zero value.
		c.log.Debugf("%s %s: ignoring non-JSON response body", method, path)
		return nil
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, target interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, target)
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, target interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, target)
}

// Patch performs a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, target interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, target)
}

// Put performs a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, target interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, target)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, target interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, target)
}

// trimQuery strips the query string so metric labels stay low-cardinality.
func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
