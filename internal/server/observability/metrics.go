// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the taskkeeper server.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts HTTP requests by method, matched route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskkeeper_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskkeeper_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthRejectionsTotal counts requests turned away by the auth gate.
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskkeeper_auth_rejections_total",
			Help: "Requests rejected by authentication",
		},
		[]string{"reason"},
	)

	// TokensIssuedTotal counts session tokens handed out.
	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskkeeper_session_tokens_issued_total",
			Help: "Session tokens issued",
		},
	)

	// TokensRevokedTotal counts revocation calls by scope (one, all, others).
	TokensRevokedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskkeeper_session_revocations_total",
			Help: "Session token revocations",
		},
		[]string{"scope"},
	)
)

// Auth rejection reasons.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
)

// Revocation scopes.
const (
	ScopeOne    = "one"
	ScopeAll    = "all"
	ScopeOthers = "others"
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthRejectionsTotal,
		TokensIssuedTotal,
		TokensRevokedTotal,
	)
}
