package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registrations records registration outcomes by result
	// (success|success_email_failed|validation|conflict|error).
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_registration_total",
			Help: "Total number of account registration attempts",
		},
		[]string{"result"},
	)

	// Verifications counts verify and resend attempts by operation and result.
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_verification_total",
			Help: "Total number of email verification operations",
		},
		[]string{"operation", "result"},
	)

	// EmailDispatches counts verification email deliveries (success|failure).
	EmailDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_email_dispatch_total",
			Help: "Total number of verification email dispatch attempts",
		},
		[]string{"result"},
	)

	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bazaar_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var (
	// MaintenanceRuns counts background maintenance job runs by job and result.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_maintenance_runs_total",
			Help: "Total number of maintenance job executions",
		},
		[]string{"job", "result"},
	)

	// MaintenanceDuration measures how long maintenance jobs take.
	MaintenanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bazaar_maintenance_duration_seconds",
			Help:    "Maintenance job duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)
