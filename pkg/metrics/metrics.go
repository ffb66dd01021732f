// Package metrics documents the Prometheus metrics exposed by gradient.
// Metrics are defined in their owning packages (elevation, cache) via
// promauto to keep registration local and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by gradient. All
// metrics register themselves via promauto in their owning packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request metrics (pkg/elevation):
//   - gradient_elevation_requests_total{status} (Counter): API requests by
//     HTTP status ("200", "500", "network_error", ...)
//   - gradient_elevation_request_duration_seconds (Histogram): request duration
//   - gradient_elevation_batches_total{source} (Counter): batches by source
//     ("cache", "network", "failed")
//   - gradient_elevations_total (Counter): elevation values collected
//   - gradient_elevation_retries_total (Counter): retry attempts
//   - gradient_elevation_retry_exhausted_total (Counter): retry exhaustions
//
// Cache metrics (pkg/cache):
//   - gradient_cache_hits_total{backend} (Counter): hits by backend
//     ("memory", "redis", "badger")
//   - gradient_cache_misses_total{backend} (Counter): misses by backend
//   - gradient_cache_errors_total{backend,operation} (Counter): backend errors
//
// Example Prometheus queries:
//
//   # Cache hit rate
//   sum(rate(gradient_cache_hits_total[5m])) /
//   (sum(rate(gradient_cache_hits_total[5m])) + sum(rate(gradient_cache_misses_total[5m])))
//
//   # Share of batches answered without a network call
//   rate(gradient_elevation_batches_total{source="cache"}[5m]) /
//   sum(rate(gradient_elevation_batches_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(gradient_elevation_request_duration_seconds_bucket[5m]))
