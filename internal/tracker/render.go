// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
)

// MarkerKind distinguishes how a marker is drawn.
type MarkerKind string

const (
	KindVessel        MarkerKind = "vessel"
	KindTrackedVessel MarkerKind = "tracked"
	KindFallback      MarkerKind = "fallback"
)

// Info is the content of a marker's info panel.
type Info struct {
	VesselID         int64
	Name             string
	SpeedOverGround  float64
	CourseOverGround float64
	UpdatedAt        time.Time
	Live             bool
}

// Marker is a UI handle owned by exactly one entity (or by the monitor for
// the fallback marker). Position returns the live, possibly mid-animation,
// position.
type Marker interface {
	Position() ais.LatLon
	SetPosition(ais.LatLon)
	SetRotation(deg float64)
	SetInfo(Info)
	Remove()
}

// Overlay is a removable map overlay such as the trail polyline.
type Overlay interface {
	Remove()
}

// Renderer creates markers and overlays. Implementations need not be safe
// for concurrent use; the tracker calls them from one goroutine.
type Renderer interface {
	AddMarker(kind MarkerKind, pos ais.LatLon, rotation float64) Marker
	DrawTrail(points []ais.LatLon) Overlay
	FitBounds(points []ais.LatLon)
	Highlight(pos ais.LatLon, d time.Duration)
}

// Alerter plays the one-time first sighting alert.
type Alerter interface {
	Alert(report ais.PositionReport)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(report ais.PositionReport)

// Alert calls f(report).
func (f AlerterFunc) Alert(report ais.PositionReport) {
	f(report)
}

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
