package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_admin_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "water_admin_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_admin_backend_requests_total",
			Help: "Requests made to the remote REST API, by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "water_admin_backend_request_duration_seconds",
			Help:    "Remote REST API latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_admin_response_cache_lookups_total",
			Help: "Response cache lookups, by result (hit or miss).",
		},
		[]string{"result"},
	)

	StaleViewsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_admin_stale_views_total",
			Help: "Dashboard responses that fell back to the previous snapshot.",
		},
		[]string{"view"},
	)
)
