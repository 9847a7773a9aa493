// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"testing"
	"time"
)

func TestMonitor_FirstSightingFiresOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for i := 0; i < 1001; i++ {
		h.clock.Advance(time.Second)
		h.tracker.Ingest(report(trackedID, -35+float64(i)*1e-4, 174, 0, h.clock.Now()))
	}

	if h.alerter.calls != 1 {
		t.Errorf("alert fired %d times, want 1", h.alerter.calls)
	}
	if len(h.renderer.highlights) != 1 {
		t.Errorf("highlight shown %d times, want 1", len(h.renderer.highlights))
	}
	if got := h.monitor.Status().TrailPoints; got != 100 {
		t.Errorf("trail points = %d, want 100", got)
	}
}

func TestMonitor_FallbackThenLive(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	h.clock.Advance(30 * time.Second)
	if !h.tracker.CheckFallback() {
		t.Fatal("fallback not placed after grace period")
	}
	fallbacks := h.renderer.visible(KindFallback)
	if len(fallbacks) != 1 || fallbacks[0].pos != home {
		t.Fatalf("fallback markers = %+v", fallbacks)
	}
	if st := h.monitor.Status(); st.Live || st.Text != StatusNotLive || !st.FallbackShown {
		t.Errorf("status after fallback = %+v", st)
	}

	h.clock.Advance(5 * time.Second)
	h.tracker.Ingest(report(trackedID, -35.25, 174.12, 0, h.clock.Now()))

	if n := len(h.renderer.visible(KindFallback)); n != 0 {
		t.Errorf("%d fallback markers still shown", n)
	}
	if n := len(h.renderer.visible(KindTrackedVessel)); n != 1 {
		t.Errorf("%d live markers shown, want 1", n)
	}
	if st := h.monitor.Status(); !st.Live || st.Text != StatusLive || st.FallbackShown {
		t.Errorf("status after sighting = %+v", st)
	}
}

func TestMonitor_FallbackSkippedAfterLive(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tracker.Ingest(report(trackedID, -35.25, 174.12, 0, h.clock.Now()))

	h.clock.Advance(30 * time.Second)
	if h.tracker.CheckFallback() {
		t.Error("fallback placed after a live sighting")
	}
	if n := len(h.renderer.visible(KindFallback)); n != 0 {
		t.Errorf("%d fallback markers shown", n)
	}
}

func TestMonitor_FallbackCheckRunsOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if !h.monitor.CheckFallback() {
		t.Fatal("first check should place the fallback")
	}
	if h.monitor.CheckFallback() {
		t.Error("second check placed another fallback")
	}
	if n := len(h.renderer.markers); n != 1 {
		t.Errorf("%d markers created, want 1", n)
	}
}

func TestMonitor_ToggleTrail(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	if got := h.tracker.ToggleTrail(); got != TrailInsufficientData {
		t.Fatalf("empty trail toggle = %q", got)
	}
	h.tracker.Ingest(report(trackedID, -35.0, 174.0, 0, h.clock.Now()))
	if got := h.tracker.ToggleTrail(); got != TrailInsufficientData {
		t.Fatalf("single point toggle = %q", got)
	}

	h.clock.Advance(time.Minute)
	h.tracker.Ingest(report(trackedID, -35.1, 174.1, 0, h.clock.Now()))

	if got := h.tracker.ToggleTrail(); got != TrailShown {
		t.Fatalf("toggle = %q, want %q", got, TrailShown)
	}
	if len(h.renderer.trails) != 1 || len(h.renderer.trails[0].points) != 2 {
		t.Fatalf("trails = %+v", h.renderer.trails)
	}
	if len(h.renderer.fits) != 1 {
		t.Errorf("view fitted %d times, want 1", len(h.renderer.fits))
	}
	if !h.monitor.Status().TrailVisible {
		t.Error("status should report the trail visible")
	}

	if got := h.tracker.ToggleTrail(); got != TrailHidden {
		t.Fatalf("second toggle = %q, want %q", got, TrailHidden)
	}
	if !h.renderer.trails[0].removed {
		t.Error("trail overlay not removed")
	}
}
