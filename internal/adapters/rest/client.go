package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradeconsole/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Client is the request/response transport to the backend REST API.
// Every call injects the persisted bearer token (when present), a request
// correlation ID, and normalizes failures into ports sentinel errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     ports.Logger
}

// Config holds configuration for the REST client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	TokenPath string // Optional path to a persisted bearer token file
	Logger    ports.Logger
}

// New creates a REST client. A missing token file means unauthenticated
// requests, not an error; the backend decides what it allows.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for REST client")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for REST client")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}

	if cfg.TokenPath != "" {
		raw, err := os.ReadFile(cfg.TokenPath)
		switch {
		case err == nil:
			c.token = strings.TrimSpace(string(raw))
		case errors.Is(err, os.ErrNotExist):
			cfg.Logger.Warn(context.Background(), "Token file not found, proceeding unauthenticated",
				map[string]interface{}{"path": cfg.TokenPath})
		default:
			return nil, fmt.Errorf("failed to read token file %q: %w", cfg.TokenPath, err)
		}
	}

	return c, nil
}

// SetToken replaces the bearer token for subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// apiError is the error body shape the backend returns on failures.
type apiError struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}

// do performs one JSON request/response round trip. out may be nil when the
// caller does not need the body. A 2xx body that fails to decode is an
// ErrDecodeFailed, never a silently zeroed result.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.send(ctx, op, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("%s failed: %w: %w", op, ports.ErrDecodeFailed, err)
		c.logger.Error(ctx, err, "Response decode failed", map[string]interface{}{"operation": op, "path": path})
		return err
	}
	return nil
}

// send performs the round trip and status handling, leaving the body open for
// the caller. Used directly by the binary export endpoint.
func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body interface{}, contentType string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if rd, ok := body.(io.Reader); ok {
		reqBody = rd
	} else if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrInvalidRequest, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrInvalidRequest, err)
	}
	if reqBody != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug(ctx, "Backend request", map[string]interface{}{
		"operation": op, "method": method, "path": path, "requestID": requestID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.normalize(ctx, err, op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.statusError(ctx, resp, op)
	}
	return resp, nil
}

// decodeBody decodes a 2xx body, wrapping failures as decode errors.
func decodeBody(r io.Reader, out interface{}) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrDecodeFailed, err)
	}
	return nil
}

// normalize translates transport-level failures into standardized ports errors.
func (c *Client) normalize(ctx context.Context, err error, op string) error {
	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", op, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w: %w", op, ports.ErrContextCanceled, err)
	default:
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			finalErr = fmt.Errorf("%s failed: %w: %w", op, ports.ErrTimeout, err)
		} else if strings.Contains(err.Error(), "connection refused") ||
			strings.Contains(err.Error(), "no such host") ||
			strings.Contains(err.Error(), "connection reset by peer") {
			finalErr = fmt.Errorf("%s failed: %w: %w", op, ports.ErrConnectionFailed, err)
		} else {
			finalErr = fmt.Errorf("%s failed: %w: %w", op, ports.ErrUnknown, err)
		}
	}

	c.logger.Error(ctx, err, "Backend request failed", map[string]interface{}{"operation": op})
	return finalErr
}

// statusError maps a non-2xx response to a sentinel error, carrying the
// server-provided message when the body has one.
func (c *Client) statusError(ctx context.Context, resp *http.Response, op string) error {
	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		sentinel = ports.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ports.ErrNotFound
	case resp.StatusCode == http.StatusRequestTimeout:
		sentinel = ports.ErrTimeout
	case resp.StatusCode >= 500:
		sentinel = ports.ErrServerError
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = ports.ErrInvalidRequest
	default:
		sentinel = ports.ErrServerRejected
	}

	var body apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	fields := map[string]interface{}{"operation": op, "status": resp.StatusCode}
	var err error
	if msg := body.text(); msg != "" {
		fields["serverMessage"] = msg
		err = fmt.Errorf("%s failed: %w: server says: %s", op, sentinel, msg)
	} else {
		err = fmt.Errorf("%s failed: %w: status %d", op, sentinel, resp.StatusCode)
	}
	c.logger.Error(ctx, err, "Backend returned error status", fields)
	return err
}
