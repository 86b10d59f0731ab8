package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_requests_total",
		Help: "Token requests by role and outcome (issued or the failure reason)",
	}, []string{"role", "outcome"})

	tokenDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "auth_token_duration_seconds",
		Help: "Time spent answering a token request",
		// sized for bcrypt
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"outcome"})

	authzDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_authz_duration_seconds",
		Help:    "Time spent resolving the caller of an API request",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	forbidden = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_forbidden_total",
		Help: "Requests refused by a permission check, by role and method",
	}, []string{"role", "method"})
)

const outcomeIssued = "issued"

// recordToken counts one token request. role is "unknown" on failure.
func recordToken(role, outcome string, started time.Time) {
	tokenRequests.WithLabelValues(role, outcome).Inc()
	tokenDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

func recordAuthz(started time.Time) { authzDuration.Observe(time.Since(started).Seconds()) }

func recordForbidden(role, method string) { forbidden.WithLabelValues(role, method).Inc() }
