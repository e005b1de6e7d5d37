// Package client is a typed HTTP client for the journal API, used by journalctl.
package client

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
)

const maxRetries = 3

// APIClient defines the journal API operations.
type APIClient interface {
	Holdings(ctx context.Context) ([]models.Holding, error)
	Positions(ctx context.Context) ([]models.Position, error)
	Orders(ctx context.Context) ([]models.Order, error)
	NewOrder(ctx context.Context, o models.Order) (string, error)
}

// Client talks to a running journal server.
// It implements the APIClient.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

var _ APIClient = (*Client)(nil)

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg *config.Client, logger *zap.Logger) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		client:  resty.New().SetBaseURL(cfg.BaseURL).SetHeader("Accept", "application/json"),
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		backoff: exponentialBackoff,
	}
}

// exponentialBackoff waits 1s, 2s, 4s.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// apiMessage is the error body of every route: one of the two keys is set.
type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m *apiMessage) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (c *Client) Holdings(ctx context.Context) ([]models.Holding, error) {
	var out []models.Holding
	if _, err := c.doRequest(ctx, http.MethodGet, "/allholdings", c.client.R().SetResult(&out), true); err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	return out, nil
}

func (c *Client) Positions(ctx context.Context) ([]models.Position, error) {
	var out []models.Position
	if _, err := c.doRequest(ctx, http.MethodGet, "/allpositions", c.client.R().SetResult(&out), true); err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	return out, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if _, err := c.doRequest(ctx, http.MethodGet, "/orders", c.client.R().SetResult(&out), true); err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return out, nil
}

// NewOrder submits o once and returns the server's confirmation message.
func (c *Client) NewOrder(ctx context.Context, o models.Order) (string, error) {
	body := map[string]any{"name": o.Name, "qty": o.Qty, "price": o.Price, "mode": o.Mode}
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&apiMessage{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/newOrder", req, false)
	if err != nil {
		return "", fmt.Errorf("failed to submit order: %w", err)
	}
	return resp.Result().(*apiMessage).text(), nil
}

// doRequest executes req with rate limiting. When retry is set, 429, 5xx and
// transport errors are retried with backoff.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request, retry bool) (*resty.Response, error) {
	req.SetContext(ctx).SetError(&apiMessage{})

	attempts := 1
	if retry {
		attempts = maxRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err := req.Execute(method, url)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration
		if err != nil {
			lastErr = err
			shouldRetry = true
		} else {
			lastErr = statusError(resp)
			code := resp.StatusCode()
			if code == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if code >= 500 {
				shouldRetry = true
			}
		}

		if !retry || !shouldRetry || i == attempts-1 {
			break
		}
		if retryAfter == 0 {
			retryAfter = c.backoff(i)
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(lastErr),
		)

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func statusError(resp *resty.Response) error {
	msg := resp.Status()
	if m, ok := resp.Error().(*apiMessage); ok && m.text() != "" {
		msg = m.text()
	}
	return &StatusError{Code: resp.StatusCode(), Message: msg}
}
