package client

import (
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	aesRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aes_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	aesRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aes_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	aesRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aes_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for GET retry logic.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the retry policy used against the AES API:
// up to 5 attempts with exponential backoff starting at half a second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// withJitter adds ±20% randomness to a backoff to avoid lockstep retries
// across concurrent workers.
func withJitter(backoff time.Duration) time.Duration {
	return time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
}

// nextBackoff grows the backoff exponentially up to the configured cap.
func (c RetryConfig) nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.BackoffMultiplier)
	if next > c.MaxBackoff {
		next = c.MaxBackoff
	}
	return next
}
