// Package client issues JSON requests against the services under test and
// normalises every HTTP status into a Response. Only network-level problems
// are reported as errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexisbeaulieu97/shopflow/internal/logger"
)

// DefaultTimeout bounds a single request when neither the client nor the
// request sets one.
const DefaultTimeout = 10 * time.Second

// Doer is the subset of *http.Client the adapter needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	HTTPClient Doer
	Timeout    time.Duration
	UserAgent  string
	Logger     *logger.Logger
}

// Client is the HTTP client adapter shared by every step.
type Client struct {
	http      Doer
	timeout   time.Duration
	userAgent string
	log       *logger.Logger
}

// Request describes one call. Body is JSON-encoded when non-nil.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
	Timeout time.Duration
}

// Response is the normalised result of a call that reached the server.
type Response struct {
	Status   int
	Headers  http.Header
	Body     Body
	Duration time.Duration
}

// TransportError reports a failure below HTTP: DNS, connect, timeout, or a
// truncated body.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// New creates a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "shopflow/1.0"
	}
	return &Client{
		http:      httpClient,
		timeout:   timeout,
		userAgent: userAgent,
		log:       opts.Logger,
	}
}

// Do executes req. Any HTTP status, including 4xx and 5xx, is returned as a
// Response with a nil error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: fmt.Errorf("reading response body: %w", err)}
	}
	duration := time.Since(start)

	resp := &Response{
		Status:   httpResp.StatusCode,
		Headers:  httpResp.Header,
		Body:     DecodeBody(raw, httpResp.Header.Get("Content-Type")),
		Duration: duration,
	}

	c.log.WithFields(map[string]any{
		"method":   req.Method,
		"url":      req.URL,
		"status":   resp.Status,
		"body":     resp.Body.Kind.String(),
		"duration": duration.String(),
	}).Debug("http exchange")

	return resp, nil
}
