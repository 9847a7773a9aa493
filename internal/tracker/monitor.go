// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/logging"
)

// highlightDuration is how long the first sighting highlight stays visible.
const highlightDuration = 3 * time.Second

// TrailResult is the outcome of a trail toggle request.
type TrailResult string

const (
	TrailShown            TrailResult = "shown"
	TrailHidden           TrailResult = "hidden"
	TrailInsufficientData TrailResult = "insufficient data"
)

// Status texts shown for the tracked vessel.
const (
	StatusWaiting = "waiting for first sighting"
	StatusLive    = "live"
	StatusNotLive = "not live - showing last known location"
)

// MonitorConfig configures the tracked-vessel monitor.
type MonitorConfig struct {
	VesselID      int64
	Name          string
	TrailCapacity int
	Home          ais.LatLon
}

// Status is a point-in-time view of the tracked vessel.
type Status struct {
	VesselID      int64      `json:"vessel_id"`
	Name          string     `json:"name"`
	Text          string     `json:"status"`
	Live          bool       `json:"live"`
	LastPosition  ais.LatLon `json:"last_position"`
	LastSeen      time.Time  `json:"last_seen,omitempty"`
	TrailPoints   int        `json:"trail_points"`
	TrailVisible  bool       `json:"trail_visible"`
	FallbackShown bool       `json:"fallback_shown"`
}

// Monitor follows the one distinguished vessel: it keeps its trail, fires
// the first sighting alert once and manages the fallback marker.
//
// The live marker belongs to the Tracker's registry. The monitor only
// ever owns the fallback marker and removes it before the live marker can
// appear, so the two are never shown together.
type Monitor struct {
	cfg      MonitorConfig
	renderer Renderer
	alerter  Alerter

	trail        *Trail
	trailOverlay Overlay
	fallback     Marker

	liveReceived    bool
	firstSighting   bool
	fallbackChecked bool

	lastLive   ais.LatLon
	lastSeenAt time.Time
	statusText string
}

// NewMonitor creates a monitor. alerter may be nil.
func NewMonitor(cfg MonitorConfig, renderer Renderer, alerter Alerter) *Monitor {
	if cfg.TrailCapacity <= 0 {
		cfg.TrailCapacity = 100
	}
	return &Monitor{
		cfg:        cfg,
		renderer:   renderer,
		alerter:    alerter,
		trail:      NewTrail(cfg.TrailCapacity),
		lastLive:   cfg.Home,
		statusText: StatusWaiting,
	}
}

// VesselID returns the distinguished vessel identity.
func (m *Monitor) VesselID() int64 {
	return m.cfg.VesselID
}

// Observe records a live report of the tracked vessel. The Tracker calls it
// before it creates or moves the live marker.
func (m *Monitor) Observe(report ais.PositionReport) {
	m.trail.Append(TrailPoint{Lat: report.Lat, Lon: report.Lon, Time: report.ReceivedAt})
	m.lastLive = report.Position()
	m.lastSeenAt = report.ReceivedAt
	m.liveReceived = true
	m.statusText = StatusLive

	if m.fallback != nil {
		m.fallback.Remove()
		m.fallback = nil
		logging.Info().
			Int64("mmsi", report.VesselID).
			Msg("live sighting replaced fallback marker")
	}

	if m.firstSighting {
		return
	}
	m.firstSighting = true

	logging.Info().
		Int64("mmsi", report.VesselID).
		Str("name", m.cfg.Name).
		Float64("lat", report.Lat).
		Float64("lon", report.Lon).
		Msg("tracked vessel sighted")

	if m.alerter != nil {
		m.alerter.Alert(report)
	}
	m.renderer.Highlight(report.Position(), highlightDuration)
}

// CheckFallback places the fallback marker at the home location if no live
// report has arrived yet. Only the first call has any effect. It reports
// whether the marker was placed.
func (m *Monitor) CheckFallback() bool {
	if m.fallbackChecked {
		return false
	}
	m.fallbackChecked = true

	if m.liveReceived {
		return false
	}

	m.fallback = m.renderer.AddMarker(KindFallback, m.cfg.Home, 0)
	m.fallback.SetInfo(Info{
		VesselID: m.cfg.VesselID,
		Name:     m.cfg.Name,
		Live:     false,
	})
	m.statusText = StatusNotLive

	logging.Info().
		Int64("mmsi", m.cfg.VesselID).
		Float64("lat", m.cfg.Home.Lat).
		Float64("lon", m.cfg.Home.Lon).
		Msg("no live sighting, showing last known location")
	return true
}

// ToggleTrail shows the trail and fits the view to it, or hides it when it
// is already shown.
func (m *Monitor) ToggleTrail() TrailResult {
	if m.trailOverlay != nil {
		m.trailOverlay.Remove()
		m.trailOverlay = nil
		return TrailHidden
	}

	if m.trail.Len() < 2 {
		return TrailInsufficientData
	}

	path := m.trail.Path()
	m.trailOverlay = m.renderer.DrawTrail(path)
	m.renderer.FitBounds(path)
	return TrailShown
}

// Trail returns the recorded trail points, oldest first.
func (m *Monitor) Trail() []TrailPoint {
	return m.trail.Points()
}

// FallbackShown reports whether the fallback marker is on the map.
func (m *Monitor) FallbackShown() bool {
	return m.fallback != nil
}

// Status returns the current state of the tracked vessel.
func (m *Monitor) Status() Status {
	return Status{
		VesselID:      m.cfg.VesselID,
		Name:          m.cfg.Name,
		Text:          m.statusText,
		Live:          m.liveReceived,
		LastPosition:  m.lastLive,
		LastSeen:      m.lastSeenAt,
		TrailPoints:   m.trail.Len(),
		TrailVisible:  m.trailOverlay != nil,
		FallbackShown: m.fallback != nil,
	}
}
