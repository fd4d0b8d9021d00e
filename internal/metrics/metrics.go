// Package metrics exposes Prometheus collectors for the HTTP layer and the
// feed page cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheLookups counts feed cache lookups by result (hit, miss, error).
	PageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yatube",
		Subsystem: "pagecache",
		Name:      "lookups_total",
		Help:      "Feed page cache lookups by result.",
	}, []string{"result"})

	PageCacheClears = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yatube",
		Subsystem: "pagecache",
		Name:      "clears_total",
		Help:      "Manual feed page cache clears.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yatube",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "yatube",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
