package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters incremented by middleware and handlers.
var (
	// status: success, invalid_credentials, rate_limited, error
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "login_attempts_total",
			Help:      "Password grant attempts by outcome",
		},
		[]string{"status"},
	)

	// reason: missing, malformed, invalid
	TokenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_rejections_total",
			Help:      "Bearer tokens rejected by the auth middleware",
		},
		[]string{"reason"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Identity registrations by role",
		},
		[]string{"role"},
	)
)
