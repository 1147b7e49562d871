package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, strings.TrimSpace(e.Body))
}

// retryable reports whether the server may accept the same request later.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// IngestResponse is the body of POST /matches.
type IngestResponse struct {
	Status string `json:"status"`
	service.IngestResult
}

// Client talks to a goalwatch server. Every request waits on a shared
// limiter and is retried with exponential backoff on 429 and 5xx.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	retries    atomic.Int64
	logger     logger.Logger
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, limit rate.Limit, burst int, maxRetries uint64) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: maxRetries,
		logger:     logger.Get().Named("simulate-client"),
	}
}

// Retries returns how many requests were retried so far.
func (c *Client) Retries() int { return int(c.retries.Load()) }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("new request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("http do: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
			if serr.retryable() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s %s: %w", method, path, err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	notify := func(err error, wait time.Duration) {
		c.retries.Add(1)
		c.logger.Debug(ctx, "request failed, retrying",
			logger.String("method", method),
			logger.String("path", path),
			logger.Duration("wait", wait),
			logger.Error(err))
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx), notify)
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// PostMatches submits one batch of records.
func (c *Client) PostMatches(ctx context.Context, records []model.MatchRecord) (IngestResponse, error) {
	var res IngestResponse
	err := c.do(ctx, http.MethodPost, "/matches", records, &res)
	return res, err
}

// Stats reads GET /stats.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	var st service.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &st)
	return st, err
}

// Refresh triggers POST /profiles/refresh.
func (c *Client) Refresh(ctx context.Context) (service.RefreshResult, error) {
	var res service.RefreshResult
	err := c.do(ctx, http.MethodPost, "/profiles/refresh", nil, &res)
	return res, err
}

// Score requests POST /score.
func (c *Client) Score(ctx context.Context, req service.ScoreRequest) (model.Outcome, error) {
	var out model.Outcome
	err := c.do(ctx, http.MethodPost, "/score", req, &out)
	return out, err
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Code == code
}
