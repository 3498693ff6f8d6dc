package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Request is one prompt sent to the reasoning backend.
type Request struct {
	// Prompt is the fully rendered policy prompt.
	Prompt string `json:"prompt"`

	// ModelName selects the backend model.
	ModelName string `json:"modelName"`

	// Temperature is the sampling temperature. Verdicts want determinism,
	// so this is normally 0.
	Temperature float64 `json:"temperature"`

	// TimeoutMs is the backend-side time budget in milliseconds.
	TimeoutMs int64 `json:"timeoutMs"`
}

// Response is the backend's raw reply. The engine never assumes the text
// is well-formed; parsing it is the parser's job.
type Response struct {
	Text string `json:"text"`
}

// Backend is the outbound interface to the reasoning service. It is an
// opaque network collaborator: implementations may fail, stall, or return
// garbage, and callers must degrade gracefully in all three cases.
type Backend interface {
	// Complete sends a prompt and returns the raw response text.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig configures the HTTP reasoning backend client.
type ClientConfig struct {
	// BaseURL is the backend endpoint (e.g., "http://reasoner:9090").
	// The completion path is appended.
	BaseURL string `yaml:"base_url"`

	// ModelName selects the backend model for every call.
	ModelName string `yaml:"model_name"`

	// Temperature is the sampling temperature. Default: 0.
	Temperature float64 `yaml:"temperature"`

	// Timeout is the per-attempt timeout. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2.
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff before the first retry; it
	// doubles per attempt. Default: 250ms.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxIdleConns bounds the connection pool. Default: 10.
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *ClientConfig) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.ModelName == "" {
		c.ModelName = "governance-reasoner"
	}
}

// Client is the HTTP implementation of Backend with connection pooling,
// per-attempt timeouts, and bounded exponential-backoff retries. Transient
// failures (transport errors, 5xx) are retried; 4xx responses are not.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a reasoning backend client.
func NewClient(config ClientConfig, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	config.ApplyDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "semantic.client"),
	}, nil
}

// Complete sends the prompt with retries. The context carries the overall
// deadline; each attempt additionally respects the configured per-attempt
// timeout.
func (c *Client) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req.ModelName == "" {
		req.ModelName = c.config.ModelName
	}
	if req.TimeoutMs == 0 {
		req.TimeoutMs = c.config.Timeout.Milliseconds()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backend request: %w", err)
	}

	url := c.config.BaseURL + "/v1/complete"

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.config.RetryBackoff
			c.logger.Debug("retrying backend call",
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, c.deadlineError(ctx)
			case <-time.After(backoff):
			}
		}

		resp, err := c.attempt(ctx, url, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Deadline errors and non-retryable backend errors end the loop
		if ctx.Err() != nil {
			return nil, c.deadlineError(ctx)
		}
		var be *BackendError
		if errors.As(err, &be) && be.StatusCode >= 400 && be.StatusCode < 500 {
			return nil, err
		}

		c.logger.Warn("backend call failed, will retry",
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

// attempt performs a single HTTP round trip.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.deadlineError(ctx)
		}
		return nil, &BackendError{Message: "transport failure", Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &BackendError{Message: "failed to read response body", Cause: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &BackendError{
			StatusCode: httpResp.StatusCode,
			Message:    truncate(string(respBody), 200),
		}
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ParseError{
			RawResponse: truncate(string(respBody), 200),
			Cause:       err,
		}
	}

	return &resp, nil
}

// deadlineError maps a cancelled context to the engine's timeout error.
func (c *Client) deadlineError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return &TimeoutError{Timeout: c.config.Timeout}
}

// truncate shortens s for log and error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
