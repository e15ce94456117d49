// Package client provides the AES HTTP transport: pooled connections,
// bounded retry with exponential backoff, optional response caching, and
// error classification.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Kuugang/AES-events-scraper/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the AES site root all landing endpoints hang off.
const DefaultBaseURL = "https://www.advancedeventsystems.com"

// Prometheus metrics for AES client operations.
var (
	aesRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aes_requests_total",
		Help: "Total AES requests by endpoint and status",
	}, []string{"endpoint", "status"})

	aesRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aes_request_duration_seconds",
		Help:    "AES request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	aesErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aes_errors_total",
		Help: "Total AES errors by class",
	}, []string{"class"})
)

// Client issues GET requests against the AES API. It is cheap to
// construct; the pipeline gives every worker its own instance so no
// client is ever shared between goroutines.
type Client struct {
	httpClient *http.Client
	config     Config
	cache      *cache.Manager
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root (DefaultBaseURL unless overridden in tests).
	BaseURL string

	// UserAgent identifies the scraper to the API. Required.
	UserAgent string

	// PoolSize bounds idle connections kept for reuse.
	PoolSize int

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration

	// RequestTimeout bounds one whole request including body read.
	RequestTimeout time.Duration

	// Retry is the GET retry policy.
	Retry RetryConfig

	// Cache is the optional response cache. Nil disables caching.
	Cache *cache.Manager
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      userAgent,
		PoolSize:       500,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 120 * time.Second,
		Retry:          DefaultRetryConfig(),
	}
}

// New creates a new AES client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 500
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	logger := log.With().Str("component", "aes-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		config: cfg,
		cache:  cfg.Cache,
		logger: logger,
	}, nil
}

// Get performs a GET request against an API path (including query) with
// the client's retry policy. On a retryable status {429, 500, 502, 503,
// 504} or a transport failure it backs off exponentially, up to
// Retry.MaxAttempts tries. Exhausting retries on a status hands the final
// response to the caller to inspect; exhausting them on transport
// failures returns ErrRetryExhausted.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	url := c.config.BaseURL + path

	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, url); err == nil {
			aesRequestsTotal.WithLabelValues(path, "cache").Inc()
			c.logger.Debug().Str("endpoint", path).Msg("Serving response from cache")
			return cache.EntryToResponse(entry), nil
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Cache get error")
		}
	}

	start := time.Now()
	defer func() {
		aesRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.doWithRetry(ctx, url, path)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, url, entry); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

// doWithRetry runs the attempt loop for one GET.
func (c *Client) doWithRetry(ctx context.Context, url, endpoint string) (*http.Response, error) {
	cfg := c.config.Retry
	backoff := cfg.InitialBackoff
	var lastErr error
	var errClass ErrorClass

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "text/html,application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil && !isRetryableStatus(resp.StatusCode) {
			if attempt > 1 {
				c.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			aesRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
			return resp, nil
		}

		if err != nil {
			errClass = classifyError(nil, err)
			lastErr = err
			aesErrorsTotal.WithLabelValues(string(errClass)).Inc()
			aesRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("HTTP request failed")
		} else {
			errClass = classifyError(resp, nil)
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
			aesErrorsTotal.WithLabelValues(string(errClass)).Inc()
			aesRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Str("error_class", string(errClass)).
				Msg("AES request error")

			if attempt == cfg.MaxAttempts {
				// Status-retries exhausted: the caller inspects the final
				// response rather than receiving an error.
				aesRetryExhaustedTotal.WithLabelValues(string(errClass)).Inc()
				return resp, nil
			}

			// Drain so the connection can be reused.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		aesRetriesTotal.WithLabelValues(string(errClass)).Inc()
		wait := withJitter(backoff)
		aesRetryBackoffSeconds.WithLabelValues(string(errClass)).Observe(wait.Seconds())

		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(wait):
		}

		backoff = cfg.nextBackoff(backoff)
	}

	aesRetryExhaustedTotal.WithLabelValues(string(errClass)).Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, cfg.MaxAttempts, lastErr)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
