package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis, badger).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradient_cache_hits_total",
			Help: "Total number of elevation response cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradient_cache_misses_total",
			Help: "Total number of elevation response cache misses",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradient_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // operation: "get", "put"
	)
)
