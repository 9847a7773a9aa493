// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
)

func TestTracker_OneEntityPerVessel(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	const id int64 = 211000001

	var last ais.PositionReport
	for i := 0; i < 20; i++ {
		h.clock.Advance(300 * time.Millisecond)
		last = report(id, -36+float64(i)*0.01, 174+float64(i)*0.02, float64(i*10), h.clock.Now())
		h.tracker.Ingest(last)
		h.tracker.Tick()
	}

	if h.tracker.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.tracker.Len())
	}
	if got := len(h.renderer.markers); got != 1 {
		t.Fatalf("created %d markers, want 1", got)
	}

	h.clock.Advance(time.Second)
	h.tracker.Tick()

	e, ok := h.tracker.Entity(id)
	if !ok {
		t.Fatal("entity missing")
	}
	if !approxEqual(e.CurrentPosition(), last.Position()) {
		t.Errorf("position = %+v, want %+v", e.CurrentPosition(), last.Position())
	}
	if e.DisplayCourse != last.CourseOverGround {
		t.Errorf("course = %v, want %v", e.DisplayCourse, last.CourseOverGround)
	}
}

func TestTracker_NewMarkerPlacement(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tracker.Ingest(report(211000002, -36.5, 174.8, 135, h.clock.Now()))
	h.tracker.Ingest(report(trackedID, -35.2, 174.1, 270, h.clock.Now()))

	tests := []struct {
		id       int64
		kind     MarkerKind
		pos      ais.LatLon
		rotation float64
	}{
		{211000002, KindVessel, ais.LatLon{Lat: -36.5, Lon: 174.8}, 135},
		{trackedID, KindTrackedVessel, ais.LatLon{Lat: -35.2, Lon: 174.1}, 0},
	}
	for _, tt := range tests {
		e, ok := h.tracker.Entity(tt.id)
		if !ok {
			t.Fatalf("entity %d missing", tt.id)
		}
		m := e.Marker.(*fakeMarker)
		if m.kind != tt.kind || m.pos != tt.pos || m.rotation != tt.rotation {
			t.Errorf("marker %d = %s %+v rot %v, want %s %+v rot %v",
				tt.id, m.kind, m.pos, m.rotation, tt.kind, tt.pos, tt.rotation)
		}
		if m.moves != 0 {
			t.Errorf("marker %d animated on creation", tt.id)
		}
		if h.tracker.Animating(tt.id) {
			t.Errorf("marker %d has an animation on creation", tt.id)
		}
	}
}

func TestTracker_EvictsStaleVessels(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	const stale, fresh int64 = 211000010, 211000011

	h.tracker.Ingest(report(stale, -36, 174, 0, h.clock.Now()))
	h.tracker.Ingest(report(trackedID, -35, 174, 0, h.clock.Now()))
	staleMarker := h.renderer.markers[0]

	// Exactly at the window the vessel survives.
	h.clock.Advance(10 * time.Minute)
	h.tracker.Ingest(report(fresh, -37, 175, 0, h.clock.Now()))
	if _, ok := h.tracker.Entity(stale); !ok {
		t.Fatal("vessel evicted at exactly the staleness window")
	}

	h.clock.Advance(time.Millisecond)
	h.tracker.Ingest(report(fresh, -37, 175.1, 0, h.clock.Now()))

	if _, ok := h.tracker.Entity(stale); ok {
		t.Error("stale vessel still in registry")
	}
	if _, ok := h.tracker.LastSeen(stale); ok {
		t.Error("stale vessel still has a last-seen entry")
	}
	if !staleMarker.removed {
		t.Error("stale vessel's marker not removed")
	}
	if _, ok := h.tracker.Entity(trackedID); !ok {
		t.Error("tracked vessel must never be evicted")
	}
	if _, ok := h.tracker.Entity(fresh); !ok {
		t.Error("fresh vessel evicted")
	}
}

func TestTracker_SweepCancelsAnimation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	const id int64 = 211000020

	h.tracker.Ingest(report(id, -36, 174, 0, h.clock.Now()))
	h.tracker.Ingest(report(id, -36.1, 174, 0, h.clock.Now()))
	if !h.tracker.Animating(id) {
		t.Fatal("second report should start an animation")
	}

	if n := h.tracker.Sweep(h.clock.Now().Add(11 * time.Minute)); n != 1 {
		t.Fatalf("Sweep evicted %d, want 1", n)
	}
	if h.tracker.Animating(id) {
		t.Error("animation survived eviction")
	}
	if h.tracker.Tick() != 0 {
		t.Error("tick still driving animations")
	}
}

func TestTracker_HandleFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		frame   string
		wantErr error
		wantLen int
	}{
		{
			name:    "position report",
			frame:   string(positionFrame(211000030, -36.2, 174.9, 45)),
			wantLen: 1,
		},
		{
			name:    "unknown message type is skipped",
			frame:   `{"MessageType":"ShipStaticData","MetaData":{"MMSI":211000031},"Message":{"ShipStaticData":{}}}`,
			wantLen: 0,
		},
		{
			name:    "broken json",
			frame:   `{"MessageType":`,
			wantErr: ais.ErrMalformedFrame,
			wantLen: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			err := h.tracker.HandleFrame([]byte(tt.frame))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HandleFrame() error = %v, want %v", err, tt.wantErr)
			}
			if h.tracker.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", h.tracker.Len(), tt.wantLen)
			}
		})
	}
}

func TestTracker_BadFrameDoesNotStopStream(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	frames := [][]byte{
		positionFrame(211000040, -36, 174, 0),
		[]byte("not json"),
		positionFrame(211000041, -36.5, 174.5, 0),
	}
	for _, f := range frames {
		_ = h.tracker.HandleFrame(f)
	}
	if h.tracker.Len() != 2 {
		t.Errorf("Len = %d, want 2", h.tracker.Len())
	}
}

func TestTracker_WithoutMonitor(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{}
	tr := New(Config{}, newFakeClock(), renderer, nil)
	tr.Ingest(report(trackedID, -35, 174, 90, epoch))

	if renderer.markers[0].kind != KindVessel || renderer.markers[0].rotation != 90 {
		t.Errorf("marker = %+v", renderer.markers[0])
	}
	if tr.CheckFallback() {
		t.Error("fallback placed without a monitor")
	}
	if got := tr.ToggleTrail(); got != TrailInsufficientData {
		t.Errorf("ToggleTrail() = %q", got)
	}
}
