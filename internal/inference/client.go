// internal/inference/client.go
package inference

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

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

const (
	textPath  = "/v1/classify/text"
	imagePath = "/v1/score/image"
)

type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	RetryableStatuses []int
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     1,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		RetryableStatuses: []int{
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// HTTPClient calls a remote inference service. Every call is bounded by
// timeout, retries included.
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
		retry:      DefaultRetryConfig(),
		logger:     logger,
	}
}

// WithRetry replaces the retry policy.
func (c *HTTPClient) WithRetry(cfg RetryConfig) *HTTPClient {
	c.retry = cfg
	return c
}

func (c *HTTPClient) ClassifyText(ctx context.Context, req TextRequest) (*models.TextModelScore, error) {
	var out models.TextModelScore
	if err := c.postJSON(ctx, textPath, req, &out); err != nil {
		return nil, err
	}
	if out.FakeProbability < 0 || out.FakeProbability > 1 {
		return nil, fmt.Errorf("inference: fake probability %v out of range", out.FakeProbability)
	}
	return &out, nil
}

func (c *HTTPClient) ScoreImage(ctx context.Context, req ImageRequest) (*models.ImageModelScore, error) {
	var out models.ImageModelScore
	if err := c.postJSON(ctx, imagePath, req, &out); err != nil {
		return nil, err
	}
	if out.Authenticity < 0 || out.Authenticity > 1 {
		return nil, fmt.Errorf("inference: authenticity %v out of range", out.Authenticity)
	}
	return &out, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, result interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	resp, err := c.do(ctx, path, encoded)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", path, models.ErrCollaboratorTimeout)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Body: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempt := 0
	var resp *http.Response

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if attempt > 0 {
			c.logger.Debug("retrying inference request",
				zap.String("path", path),
				zap.Int("attempt", attempt))
		}
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(fmt.Errorf("request failed: %w", err))
		}
		if c.isRetryableStatus(r.StatusCode) {
			r.Body.Close()
			return retry.RetryableError(fmt.Errorf("retryable status code: %d", r.StatusCode))
		}
		resp = r
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("max retries exceeded for %s: %w", path, err)
	}
	return resp, nil
}

func (c *HTTPClient) backoff() retry.Backoff {
	maxRetries := c.retry.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	initial := c.retry.InitialBackoff
	if initial <= 0 {
		initial = time.Millisecond
	}
	b := retry.NewExponential(initial)
	if c.retry.MaxBackoff > 0 {
		b = retry.WithCappedDuration(c.retry.MaxBackoff, b)
	}
	return retry.WithMaxRetries(uint64(maxRetries), b)
}

func (c *HTTPClient) isRetryableStatus(code int) bool {
	for _, s := range c.retry.RetryableStatuses {
		if s == code {
			return true
		}
	}
	return false
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("inference: HTTP %d: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("inference: HTTP %d", e.StatusCode)
}
