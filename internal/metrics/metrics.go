// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tutor"

// HTTP

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "HTTP requests by method, route and status code.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

var RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the per-tier rate limiter.",
}, []string{"tier"})

// AI gateway

// AIRequests counts completion attempts. outcome is ok, upstream_error or empty.
var AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "ai_requests_total",
	Help:      "Completion provider calls by kind, tier, model and outcome.",
}, []string{"kind", "tier", "model", "outcome"})

var AITokens = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "ai_tokens_total",
	Help:      "Tokens consumed by completion calls.",
}, []string{"kind", "tier", "model"})

var AILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "ai_latency_seconds",
	Help:      "Completion provider latency in seconds.",
	Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
}, []string{"kind", "model"})

var QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "quota_rejections_total",
	Help:      "Tutoring requests refused because the daily token budget is spent.",
}, []string{"tier"})

// BreakerState is 0 closed, 1 open, 2 half-open.
var BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "provider_breaker_state",
	Help:      "Circuit breaker state per API key (0=closed, 1=open, 2=half-open).",
}, []string{"key"})

// Usage recording

var UsageEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "usage_events_dropped_total",
	Help:      "Usage events discarded because the recorder buffer was full.",
})

var UsageEventsPruned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "usage_events_pruned_total",
	Help:      "Usage events deleted by the retention job.",
})

// Health

var DependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "dependency_up",
	Help:      "Dependency probe result (1=healthy, 0=unhealthy).",
}, []string{"dependency"})
