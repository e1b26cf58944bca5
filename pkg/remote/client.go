// Package remote posts document updates to a listener endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single Post when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept on StatusError.
const maxErrorBody = 4 << 10

// Payload is the {data, path} body exchanged with a listener.
type Payload struct {
	Data any    `json:"data"`
	Path string `json:"path"`
}

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Updated decodes the listener's {"update": bool} reply.
func (r *Response) Updated() (bool, error) {
	if r == nil {
		return false, fmt.Errorf("remote: nil response")
	}
	var reply struct {
		Update bool `json:"update"`
	}
	if err := json.Unmarshal(r.Body, &reply); err != nil {
		return false, fmt.Errorf("remote: decode reply: %w", err)
	}
	return reply.Update, nil
}

// Client posts payloads to a single endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for endpoint, which must be an absolute http(s) URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("remote: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote: endpoint %q must use http or https", endpoint)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("remote: endpoint %q has no host", endpoint)
	}

	c := &Client{
		endpoint: parsed.String(),
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Endpoint returns the URL payloads are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Post sends {data, path} as JSON. Transport failures are returned as is;
// non-2xx replies are returned as *StatusError.
func (c *Client) Post(ctx context.Context, path string, data any) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(Payload{Data: data, Path: path})
	if err != nil {
		return nil, fmt.Errorf("remote: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "post failed", "endpoint", c.endpoint, "path", path, "error", err)
		return nil, fmt.Errorf("remote: post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(excerpt)}
		c.logger.ErrorContext(ctx, "post rejected", "endpoint", c.endpoint, "path", path, "status", resp.StatusCode)
		return nil, statusErr
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read reply: %w", err)
	}
	c.logger.InfoContext(ctx, "posted document", "endpoint", c.endpoint, "path", path, "status", resp.StatusCode)
	return &Response{StatusCode: resp.StatusCode, Body: payload}, nil
}

// StatusError reports a non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: unexpected status %d: %s", e.StatusCode, e.Body)
}
