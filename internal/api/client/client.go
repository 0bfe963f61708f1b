// Package client provides a thin HTTP client for the API directory REST service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/apidex/internal/metrics"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Client is a thin HTTP client for the API directory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on a dedicated HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// APIError is a non-2xx response or a response whose envelope reports
// isSuccess=false.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (HTTP %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorBody covers both the directory envelope and problem+json bodies.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Code = eb.Code
		switch {
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.Detail != "":
			apiErr.Message = eb.Detail
		case eb.Title != "":
			apiErr.Message = eb.Title
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// call performs a request against endpoint and unwraps the envelope into T.
// endpoint is a low-cardinality label used for metrics.
func call[T any](
	ctx context.Context,
	c *Client,
	endpoint, method, path string,
	body any,
) (T, error) {
	var zero T

	start := time.Now()
	respBody, status, err := c.do(ctx, method, path, body)
	metrics.ClientRequestDuration.WithLabelValues(method, endpoint).
		Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClientErrorsTotal.WithLabelValues(endpoint, "transport").Inc()
		return zero, err
	}

	if status >= http.StatusBadRequest {
		metrics.ClientErrorsTotal.WithLabelValues(endpoint, "api").Inc()
		return zero, decodeError(status, respBody)
	}

	var env domain.Envelope[T]
	if err := json.Unmarshal(respBody, &env); err != nil {
		metrics.ClientErrorsTotal.WithLabelValues(endpoint, "decode").Inc()
		return zero, fmt.Errorf("decoding response: %w", err)
	}
	if !env.IsSuccess {
		metrics.ClientErrorsTotal.WithLabelValues(endpoint, "api").Inc()
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return zero, &APIError{StatusCode: status, Code: env.Code, Message: msg}
	}

	return env.Result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, 0, fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}
