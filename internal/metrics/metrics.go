package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	InspectionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_transitions_total",
			Help: "Inspection status transitions, by target status and outcome",
		},
		[]string{"target", "outcome"},
	)

	LeadCascadesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_cascades_total",
			Help: "Lead status cascades triggered by inspection transitions",
		},
		[]string{"lead_status", "outcome"},
	)
)
