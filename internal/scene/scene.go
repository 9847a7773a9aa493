// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package scene is a headless map: it records the markers, trail overlays,
// view bounds and highlight that the tracker draws, and serves a consistent
// snapshot of them.
//
// Thread Safety: the tracker mutates the scene from its runner goroutine
// while HTTP handlers read snapshots, so every access takes the scene lock.
package scene

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/tracker"
)

// Bounds is a lat/lon rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MarkerView is the rendered state of one marker.
type MarkerView struct {
	ID       uint64             `json:"id"`
	Kind     tracker.MarkerKind `json:"kind"`
	Position ais.LatLon         `json:"position"`
	Rotation float64            `json:"rotation"`
	Info     tracker.Info       `json:"info"`
}

// TrailView is a drawn polyline.
type TrailView struct {
	ID     uint64       `json:"id"`
	Points []ais.LatLon `json:"points"`
}

// HighlightView is a transient highlight that has not yet expired.
type HighlightView struct {
	Position ais.LatLon `json:"position"`
	Until    time.Time  `json:"until"`
}

// Snapshot is a point-in-time copy of the scene.
type Snapshot struct {
	Markers     []MarkerView   `json:"markers"`
	Trails      []TrailView    `json:"trails"`
	View        *Bounds        `json:"view,omitempty"`
	Highlight   *HighlightView `json:"highlight,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Scene implements tracker.Renderer in memory.
type Scene struct {
	mu        sync.RWMutex
	nextID    uint64
	markers   map[uint64]*marker
	trails    map[uint64]*trail
	view      *Bounds
	highlight *HighlightView
	now       func() time.Time
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		markers: make(map[uint64]*marker),
		trails:  make(map[uint64]*trail),
		now:     time.Now,
	}
}

var _ tracker.Renderer = (*Scene)(nil)

// AddMarker places a marker.
func (s *Scene) AddMarker(kind tracker.MarkerKind, pos ais.LatLon, rotation float64) tracker.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	m := &marker{
		scene: s,
		view: MarkerView{
			ID:       s.nextID,
			Kind:     kind,
			Position: pos,
			Rotation: rotation,
		},
	}
	s.markers[m.view.ID] = m

	logging.Debug().
		Uint64("marker_id", m.view.ID).
		Str("kind", string(kind)).
		Float64("lat", pos.Lat).
		Float64("lon", pos.Lon).
		Msg("marker added")
	return m
}

// DrawTrail adds a polyline through points.
func (s *Scene) DrawTrail(points []ais.LatLon) tracker.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	tr := &trail{
		scene: s,
		view: TrailView{
			ID:     s.nextID,
			Points: append([]ais.LatLon(nil), points...),
		},
	}
	s.trails[tr.view.ID] = tr

	logging.Info().Int("points", len(points)).Msg("trail shown")
	return tr
}

// FitBounds moves the view to enclose points.
func (s *Scene) FitBounds(points []ais.LatLon) {
	b, ok := BoundsOf(points)
	if !ok {
		return
	}

	s.mu.Lock()
	s.view = &b
	s.mu.Unlock()

	logging.Debug().
		Float64("south", b.South).
		Float64("west", b.West).
		Float64("north", b.North).
		Float64("east", b.East).
		Msg("view fitted")
}

// Highlight shows a transient highlight at pos for d.
func (s *Scene) Highlight(pos ais.LatLon, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = &HighlightView{Position: pos, Until: s.now().Add(d)}
}

// MarkerCount returns the number of markers on the map.
func (s *Scene) MarkerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// Snapshot returns a copy of everything currently drawn, ordered by id.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	snap := Snapshot{
		Markers:     make([]MarkerView, 0, len(s.markers)),
		Trails:      make([]TrailView, 0, len(s.trails)),
		GeneratedAt: now,
	}
	for _, m := range s.markers {
		snap.Markers = append(snap.Markers, m.view)
	}
	for _, tr := range s.trails {
		v := tr.view
		v.Points = append([]ais.LatLon(nil), v.Points...)
		snap.Trails = append(snap.Trails, v)
	}
	sort.Slice(snap.Markers, func(i, j int) bool { return snap.Markers[i].ID < snap.Markers[j].ID })
	sort.Slice(snap.Trails, func(i, j int) bool { return snap.Trails[i].ID < snap.Trails[j].ID })

	if s.view != nil {
		b := *s.view
		snap.View = &b
	}
	if s.highlight != nil && now.Before(s.highlight.Until) {
		h := *s.highlight
		snap.Highlight = &h
	}
	return snap
}

// BoundsOf returns the smallest rectangle enclosing points.
func BoundsOf(points []ais.LatLon) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{South: math.Inf(1), West: math.Inf(1), North: math.Inf(-1), East: math.Inf(-1)}
	for _, p := range points {
		b.South = math.Min(b.South, p.Lat)
		b.North = math.Max(b.North, p.Lat)
		b.West = math.Min(b.West, p.Lon)
		b.East = math.Max(b.East, p.Lon)
	}
	return b, true
}

type marker struct {
	scene *Scene
	view  MarkerView
}

func (m *marker) Position() ais.LatLon {
	m.scene.mu.RLock()
	defer m.scene.mu.RUnlock()
	return m.view.Position
}

func (m *marker) SetPosition(p ais.LatLon) {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.view.Position = p
}

func (m *marker) SetRotation(deg float64) {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.view.Rotation = deg
}

func (m *marker) SetInfo(info tracker.Info) {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.view.Info = info
}

// Remove is idempotent.
func (m *marker) Remove() {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	if _, ok := m.scene.markers[m.view.ID]; !ok {
		return
	}
	delete(m.scene.markers, m.view.ID)

	logging.Debug().
		Uint64("marker_id", m.view.ID).
		Str("kind", string(m.view.Kind)).
		Msg("marker removed")
}

type trail struct {
	scene *Scene
	view  TrailView
}

func (t *trail) Remove() {
	t.scene.mu.Lock()
	defer t.scene.mu.Unlock()
	if _, ok := t.scene.trails[t.view.ID]; !ok {
		return
	}
	delete(t.scene.trails, t.view.ID)
	logging.Info().Msg("trail hidden")
}
