// Package vk — клиент VK API: транспорт с троттлингом и повторами (Client),
// кэш ответов (Repository) и типизированные методы (Service).
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/retry"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Длинные запросы (например, execute с кодом) VK принимает только POST-формой.
const maxGETQueryLen = 2000

type Options struct {
	BaseURL    string
	Token      string
	Version    string
	RPS        float64
	MaxRetries int
	Timeout    time.Duration
	Backoff    retry.Backoff
	HTTPClient *http.Client
}

type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	version    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    retry.Backoff

	requests atomic.Int64
	failures atomic.Int64
	retries  atomic.Int64

	mu     sync.Mutex
	byCode map[int]int64
}

func NewClient(opts Options) *Client {
	if opts.Version == "" {
		opts.Version = "5.199"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.vk.com/method"
	}
	if opts.Backoff.Base <= 0 {
		opts.Backoff = retry.Backoff{Base: 300 * time.Millisecond, Max: 5 * time.Second}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := int(opts.RPS)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:       httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		version:    opts.Version,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		byCode:     map[int]int64{},
	}
}

// Call выполняет метод VK API и возвращает содержимое поля response.
// Повторяет запрос с backoff для временных ошибок (см. IsRetryable).
func (c *Client) Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := retry.Do(ctx, c.maxRetries, c.backoff, IsRetryable,
		func(attempt int, delay time.Duration, err error) {
			c.retries.Add(1)
			logger.Log.Warn("VK API: повтор запроса",
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		},
		func() error {
			raw, err := c.do(ctx, method, params)
			if err != nil {
				return err
			}
			out = raw
			return nil
		},
	)
	return out, err
}

func (c *Client) do(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.requests.Add(1)

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("access_token", c.token)
	q.Set("v", c.version)

	endpoint := c.baseURL + "/" + method
	encoded := q.Encode()

	var req *http.Request
	var err error
	if len(encoded) > maxGETQueryLen {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+encoded, nil)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.failures.Add(1)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, method, err)
	}

	logger.Log.Debug("VK API: ответ",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %s: http status %d", ErrTransport, method, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrAPI, method, err)
	}
	if env.Error != nil {
		c.failures.Add(1)
		c.countCode(env.Error.Code)
		return nil, &APIError{Code: env.Error.Code, Message: env.Error.Message, Method: method}
	}
	if len(env.Response) == 0 {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %s: empty response (http %d)", ErrAPI, method, resp.StatusCode)
	}
	return env.Response, nil
}

func (c *Client) countCode(code int) {
	c.mu.Lock()
	c.byCode[code]++
	c.mu.Unlock()
}

type ClientStats struct {
	Requests     int64         `json:"requests"`
	Failures     int64         `json:"failures"`
	Retries      int64         `json:"retries"`
	ErrorsByCode map[int]int64 `json:"errors_by_code"`
	RateLimit    float64       `json:"rate_limit_rps"`
}

func (c *Client) Stats() ClientStats {
	c.mu.Lock()
	byCode := make(map[int]int64, len(c.byCode))
	for k, v := range c.byCode {
		byCode[k] = v
	}
	c.mu.Unlock()

	rps := float64(c.limiter.Limit())
	if c.limiter.Limit() == rate.Inf {
		rps = 0
	}
	return ClientStats{
		Requests:     c.requests.Load(),
		Failures:     c.failures.Load(),
		Retries:      c.retries.Load(),
		ErrorsByCode: byCode,
		RateLimit:    rps,
	}
}
