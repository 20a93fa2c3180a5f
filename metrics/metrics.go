// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViewsRecorded counts stored views by device category.
	ViewsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewstats_views_recorded_total",
			Help: "Total number of page views folded into the aggregate document",
		},
		[]string{"device"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewstats_store_operation_duration_seconds",
			Help:    "Duration of aggregate store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewstats_store_errors_total",
			Help: "Total number of failed aggregate store operations",
		},
		[]string{"backend", "operation"},
	)

	// StoreRepairs counts documents that were malformed on read and replaced.
	StoreRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewstats_store_repairs_total",
			Help: "Total number of malformed aggregate documents replaced by defaults",
		},
		[]string{"backend"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viewstats_write_batch_size",
			Help:    "Number of views coalesced into one write by the single-writer queue",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewstats_geo_lookups_total",
			Help: "Total number of IP geolocation lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewstats_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewstats_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveStore records the duration of a store operation and counts it as
// failed when err is non-nil.
func ObserveStore(backend, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}
