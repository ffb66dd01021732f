package elevation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for elevation fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradient_elevation_requests_total",
		Help: "Total elevation API requests by HTTP status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gradient_elevation_request_duration_seconds",
		Help:    "Elevation API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradient_elevation_batches_total",
		Help: "Total batches processed by source",
	}, []string{"source"}) // "cache", "network", "failed"

	elevationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gradient_elevations_total",
		Help: "Total elevation values collected across all batches",
	})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gradient_elevation_retries_total",
		Help: "Total number of retry attempts against the elevation API",
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gradient_elevation_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted",
	})
)
