package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreValidationReads counts reads of the store-validation summary document.
	StoreValidationReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_validation_reads_total",
			Help: "Total number of store-validation summary reads",
		},
	)

	// StoreValidationUpdates counts successful updates of the summary document.
	StoreValidationUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_validation_updates_total",
			Help: "Total number of store-validation summary updates",
		},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panel_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
