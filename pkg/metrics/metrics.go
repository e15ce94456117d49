// Package metrics provides the centralized Prometheus metrics registry
// for the AES export pipeline. All metrics are defined in their
// respective packages (client, cache, pipeline) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the exporter.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - aes_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - aes_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - aes_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - aes_retries_total{error_class} (Counter): Retry attempts by error class
//   - aes_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - aes_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - aes_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - aes_cache_misses_total (Counter): Cache misses
//   - aes_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - aes_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pipeline Metrics (pkg/pipeline):
//   - aes_pipeline_items_total{phase, outcome} (Counter): Catalog items processed by phase and outcome
//   - aes_pipeline_phase_duration_seconds{phase} (Histogram): Wall-clock duration of one whole phase
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(aes_cache_hits_total[5m])) /
//   (sum(rate(aes_cache_hits_total[5m])) + sum(rate(aes_cache_misses_total[5m])))
//
//   # Per-item Failure Rate
//   sum(rate(aes_pipeline_items_total{outcome="error"}[5m])) /
//   sum(rate(aes_pipeline_items_total[5m]))
//
//   # Request Error Rate
//   rate(aes_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(aes_request_duration_seconds_bucket[5m]))
