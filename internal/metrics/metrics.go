// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package metrics holds the Prometheus instrumentation shared by the relay
// server and the aiswatch client. All collectors register with the default
// registry and are exposed through promhttp on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Relay Metrics
	RelaySessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_sessions_active",
			Help: "Current number of open relay sessions",
		},
	)

	RelaySessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sessions_total",
			Help: "Total number of inbound relay connections by outcome",
		},
		[]string{"result"}, // "opened", "rejected_config", "rejected_shutdown", "upstream_unavailable"
	)

	RelayFramesForwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_forwarded_total",
			Help: "Total number of upstream frames forwarded to clients",
		},
	)

	RelayClientFramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_dropped_client_total",
			Help: "Total number of inbound client frames discarded (the relay is one-way)",
		},
	)

	RelayFramesLost = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_lost_total",
			Help: "Total number of upstream frames that could not be delivered to a client",
		},
		[]string{"reason"}, // session end reason: "client_write_failed", "client_closed", "shutdown", ...
	)

	RelayUpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_upstream_errors_total",
			Help: "Total number of upstream AIS stream errors",
		},
		[]string{"stage"}, // "dial", "subscribe", "read", "ping"
	)

	RelaySessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_session_duration_seconds",
			Help:    "Lifetime of relay sessions in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 4 * 3600, 12 * 3600},
		},
	)

	// Tracker Metrics
	TrackerEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_entities",
			Help: "Current number of live vessels in the tracker registry",
		},
	)

	TrackerEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_evictions_total",
			Help: "Total number of stale vessels evicted from the registry",
		},
	)

	TrackerFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_frames_total",
			Help: "Total number of frames consumed by the tracker by outcome",
		},
		[]string{"outcome"}, // "position", "ignored", "invalid"
	)

	// Connection Supervisor Metrics
	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connection_state",
			Help: "Relay connection state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	ConnectionReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connection_reconnects_total",
			Help: "Total number of reconnect attempts",
		},
		[]string{"trigger"}, // "automatic", "manual"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRelaySessionOpened marks a relay session as open.
func RecordRelaySessionOpened() {
	RelaySessionsTotal.WithLabelValues("opened").Inc()
	RelaySessionsActive.Inc()
}

// RecordRelaySessionClosed marks a relay session as closed and records its lifetime.
func RecordRelaySessionClosed(lifetime time.Duration) {
	RelaySessionsActive.Dec()
	RelaySessionDuration.Observe(lifetime.Seconds())
}

// RecordRelayRejected records a connection that never became a session.
func RecordRelayRejected(result string) {
	RelaySessionsTotal.WithLabelValues(result).Inc()
}

// RecordRelayFramesLost records n upstream frames that never reached the client.
func RecordRelayFramesLost(reason string, n int) {
	RelayFramesLost.WithLabelValues(reason).Add(float64(n))
}

// RecordUpstreamError records an upstream failure at the given stage.
func RecordUpstreamError(stage string) {
	RelayUpstreamErrors.WithLabelValues(stage).Inc()
}

// RecordTrackerFrame records the outcome of one consumed frame.
func RecordTrackerFrame(outcome string) {
	TrackerFrames.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}
