// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partneradmin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partneradmin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Authentication metrics
	AuthAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partneradmin_auth_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	AuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partneradmin_auth_failures_total",
			Help: "Total number of failed login attempts",
		},
	)

	// CSV import metrics
	ImportRowsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partneradmin_import_rows_inserted_total",
			Help: "Total number of partner rows inserted by CSV import",
		},
	)

	ImportRowsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partneradmin_import_rows_rejected_total",
			Help: "Total number of partner rows rejected by CSV import",
		},
	)
)
