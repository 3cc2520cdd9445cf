// Package metrics holds the Prometheus collectors shared by the auth service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casnet"

// Authentication failure reasons. They are recorded here and in debug logs only, never returned to callers.
const (
	ReasonMissingHeader   = "missing_header"
	ReasonMalformedHeader = "malformed_header"
	ReasonTokenMalformed  = "token_malformed"
	ReasonBadSignature    = "bad_signature"
	ReasonTokenExpired    = "token_expired"
	ReasonWrongTokenType  = "wrong_token_type"
	ReasonUnknownUser     = "unknown_user"
)

var (
	// AuthFailures counts rejected bearer tokens by internal reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Rejected authentication attempts by reason.",
	}, []string{"reason"})

	// Logins counts login attempts by outcome (success, invalid_credentials, rate_limited).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// TokensIssued counts issued tokens by type.
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "tokens_issued_total",
		Help:      "Issued tokens by token type.",
	}, []string{"type"})

	// TenantAccessDenied counts Forbidden decisions of the tenant guard.
	TenantAccessDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "access",
		Name:      "denied_total",
		Help:      "Tenant access decisions that returned forbidden.",
	})

	// PasswordHashDuration observes bcrypt work including time spent waiting for a worker slot.
	PasswordHashDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "password",
		Name:      "operation_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	// HTTPRequests counts handled requests by method, route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
