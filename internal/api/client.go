// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the REST client for the finpanel platform API.
//
// The platform exposes JSON endpoints under /api/... with bearer-token
// authentication on everything except login, registration, and the SSO
// exchange. This package implements the base client plus one service type
// per entity resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the platform API client.
const (
	// DefaultBaseURL is the default platform API base URL.
	DefaultBaseURL = "http://localhost:8085"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors on safe (GET) requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Error variables for common platform API errors.
var (
	// ErrUnauthorized indicates the server rejected the credential (401-class).
	ErrUnauthorized = errors.New("authentication rejected")

	// ErrForbidden indicates the caller lacks permission for the resource.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents an error response from the platform API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("platform API error (HTTP %d): %s", e.Status, e.Message)
}

// apiErrorResponse covers the two error body shapes the backend produces:
// {"error":{"code":..,"message":..}} and {"message":..}.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// transportSlot boxes the active RoundTripper so the atomic pointer below can
// hold transports of differing concrete types.
type transportSlot struct {
	rt http.RoundTripper
}

// swapTransport is the permanent transport installed on the http.Client at
// construction. http.Client.Do reads Client.Transport without locking, so the
// field itself is never rewritten; binding changes swap the slot atomically
// instead, and requests already in flight finish on the transport they
// started with.
type swapTransport struct {
	slot atomic.Pointer[transportSlot]
}

// RoundTrip implements http.RoundTripper.
func (t *swapTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.slot.Load().rt.RoundTrip(req)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the base HTTP client for the platform API. Entity services and
// the session manager share a single Client so the installed auth binding
// applies to every call.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int

	// limiter applies client-side request pacing. Nil disables pacing.
	limiter *rate.Limiter

	httpClient *http.Client

	// baseTransport is the pristine transport the client was created with.
	// Auth bindings always wrap this, never the currently installed
	// transport, so repeated installs cannot stack.
	baseTransport http.RoundTripper

	// transport is the permanent wrapper holding the active transport.
	transport *swapTransport
}

// NewClient creates a platform API client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	swap := &swapTransport{}
	swap.slot.Store(&transportSlot{rt: base})

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  "finpanel-tui/1.0",
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: swap,
		},
		baseTransport: base,
		transport:     swap,
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts for GET requests.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit applies a client-side request rate limit in requests per
// second. A non-positive value disables pacing.
func (c *Client) WithRateLimit(perSec float64) *Client {
	if perSec <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSec), int(perSec)+1)
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BaseTransport returns the pristine transport the client was created with.
func (c *Client) BaseTransport() http.RoundTripper {
	return c.baseTransport
}

// Transport returns the currently active transport.
func (c *Client) Transport() http.RoundTripper {
	return c.transport.slot.Load().rt
}

// SetTransport replaces the active transport. The session manager uses this
// to install and remove the auth binding; the replacement is a full atomic
// swap, so at most one binding is ever active and in-flight requests are
// never raced. Passing nil restores the pristine base transport.
func (c *Client) SetTransport(rt http.RoundTripper) {
	if rt == nil {
		rt = c.baseTransport
	}
	c.transport.slot.Store(&transportSlot{rt: rt})
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// logRequest logs an API request without exposing sensitive data.
// Headers and bodies are never logged; they may carry credentials.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API response: %d %s %s (%v)", resp.StatusCode, resp.Request.Method, resp.Request.URL.Path, duration)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// Do performs a JSON request against the platform API. Query may be nil;
// body, when non-nil, is JSON-encoded; out, when non-nil, receives the
// decoded response body. GET requests are retried on transient errors.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = 1 + c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		err := c.doOnce(ctx, method, path, query, payload, "", out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// PostAuthorized performs a POST carrying an explicit bearer credential.
// Used for calls that must send a specific token regardless of whether an
// auth binding is installed, such as the best-effort logout notification.
func (c *Client) PostAuthorized(ctx context.Context, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	return c.doOnce(ctx, http.MethodPost, path, nil, payload, token, out)
}

// doOnce performs a single HTTP request. A non-empty bearer is attached as
// the Authorization header, taking precedence over any installed binding.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, bearer string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	c.logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logResponse(resp, time.Since(start))

	responseBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp.StatusCode, responseBody)
	}

	if out != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	message := ""
	code := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		// Prefer the nested error object, fall back to the flat message.
		if apiErr.Error.Message != "" {
			message = apiErr.Error.Message
			code = apiErr.Error.Code
		} else {
			message = apiErr.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	wrapped := &APIError{Status: statusCode, Code: code, Message: message}

	switch statusCode {
	case http.StatusUnauthorized:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return ErrUnauthorized
	case http.StatusForbidden:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, message)
		}
		return ErrForbidden
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusTooManyRequests:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, message)
		}
		return ErrRateLimited
	default:
		return wrapped
	}
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// Convenience wrappers around Do.

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}
