// Package backend is the HTTP client for the HackAssist API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hackassist_web/internal/config"
	"hackassist_web/pkg/monitoring"
	"hackassist_web/pkg/tracing"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
)

const statusSuccess = "success"

// TransportError covers calls that never produced a usable response:
// network failures, non-2xx statuses and undecodable bodies.
type TransportError struct {
	Route      string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: http %d", e.Route, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: %v", e.Route, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is an application-level failure: the body parsed but status was not "success".
type StatusError struct {
	Route   string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend %s: status %q", e.Route, e.Status)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Message returns the server message of a StatusError, or fallback.
func Message(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e envelope) check(route string) error {
	if e.Status == statusSuccess {
		return nil
	}
	return &StatusError{Route: route, Status: e.Status, Message: e.Message}
}

type Client struct {
	mu      sync.RWMutex
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.APIConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultAPIBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL is used by config hot reload.
func (c *Client) SetBaseURL(u string) {
	u = strings.TrimRight(u, "/")
	if u == "" {
		u = config.DefaultAPIBaseURL
	}
	c.mu.Lock()
	c.baseURL = u
	c.mu.Unlock()
}

// do sends one request. route is the path template used for metrics and span names.
func (c *Client) do(ctx context.Context, method, route, path string, body, out interface{}) error {
	started := time.Now()
	outcome := "ok"
	defer func() {
		monitoring.ObserveBackend(method, route, outcome, started)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			outcome = "encode_error"
			return &TransportError{Route: route, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Route: route, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req, span := tracing.StartClientSpan(req, route)
	defer span.End()

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return &TransportError{Route: route, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return &TransportError{Route: route, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_" + strconv.Itoa(resp.StatusCode)
		span.SetStatus(codes.Error, resp.Status)
		return &TransportError{
			Route:      route,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(data, 200)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		outcome = "decode_error"
		return &TransportError{Route: route, Err: err}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
