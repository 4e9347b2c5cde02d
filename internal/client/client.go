package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/api"
	"tasklist/internal/task"
)

// ErrAPIUnavailable indicates no endpoint is configured or reachable.
var ErrAPIUnavailable = errors.New("task API unavailable")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
	Detail  string
}

func (e *StatusError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "task api returned status %d", e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// Retryable reports whether repeating the request might succeed.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client is an HTTP client for the task store endpoint.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for baseURL. A bare host:port is treated as http.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrAPIUnavailable
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{base: base, http: &http.Client{Timeout: timeout}}, nil
}

// BaseURL returns the endpoint origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Fetch reads the whole collection.
func (c *Client) Fetch(ctx context.Context) ([]task.Task, error) {
	body, err := c.do(ctx, http.MethodGet, api.TodosPath, nil)
	if err != nil {
		return nil, err
	}
	return task.Decode(body)
}

// Save replaces the whole collection.
func (c *Client) Save(ctx context.Context, tasks []task.Task) error {
	payload, err := json.Marshal(task.Clone(tasks))
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, api.TodosPath, payload)
	if err != nil {
		return err
	}
	var ack api.MessageResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("decode save response: %w", err)
	}
	return nil
}

// Health probes the endpoint's health check.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	body, err := c.do(ctx, http.MethodGet, api.HealthPath, nil)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decode health response: %w", err)
	}
	return resp, nil
}

// Status fetches daemon and storage diagnostics.
func (c *Client) Status(ctx context.Context) (api.StatusResponse, error) {
	var resp api.StatusResponse
	body, err := c.do(ctx, http.MethodGet, api.StatusPath, nil)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decode status response: %w", err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c == nil {
		return nil, ErrAPIUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path})

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(api.RequestIDHeader, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var msg api.MessageResponse
		if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
			statusErr.Message = msg.Message
			statusErr.Detail = msg.Error
		} else {
			statusErr.Message = strings.TrimSpace(string(body))
		}
		return nil, statusErr
	}
	return body, nil
}

// IsAPIUnavailable reports whether err means the endpoint could not be
// reached or did not answer within the client timeout.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil {
			err = urlErr.Err
		}
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}
