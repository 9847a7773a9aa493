// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRelaySessionLifecycle(t *testing.T) {
	before := testutil.ToFloat64(RelaySessionsActive)
	openedBefore := testutil.ToFloat64(RelaySessionsTotal.WithLabelValues("opened"))

	RecordRelaySessionOpened()
	if got := testutil.ToFloat64(RelaySessionsActive); got != before+1 {
		t.Errorf("relay_sessions_active = %v, want %v", got, before+1)
	}

	RecordRelaySessionClosed(2 * time.Second)
	if got := testutil.ToFloat64(RelaySessionsActive); got != before {
		t.Errorf("relay_sessions_active = %v, want %v", got, before)
	}
	if got := testutil.ToFloat64(RelaySessionsTotal.WithLabelValues("opened")); got != openedBefore+1 {
		t.Errorf("relay_sessions_total{opened} = %v, want %v", got, openedBefore+1)
	}
}

func TestRecordRelayRejected(t *testing.T) {
	c := RelaySessionsTotal.WithLabelValues("rejected_config")
	before := testutil.ToFloat64(c)

	RecordRelayRejected("rejected_config")

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("relay_sessions_total{rejected_config} = %v, want %v", got, before+1)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheHits.WithLabelValues("weather")
	misses := CacheMisses.WithLabelValues("weather")
	hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("weather", true)
	RecordCacheLookup("weather", false)
	RecordCacheLookup("weather", false)

	if got := testutil.ToFloat64(hits); got != hitsBefore+1 {
		t.Errorf("cache_hits_total = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(misses); got != missesBefore+2 {
		t.Errorf("cache_misses_total = %v, want %v", got, missesBefore+2)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("api_active_requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
}

// TestMetricGathering tests that metrics can be gathered and pass lint checks
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/routes", "200", 15*time.Millisecond)
	RecordTrackerFrame("position")
	RecordUpstreamError("read")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
