// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
)

const trackedID int64 = 512120000

var (
	epoch = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	home  = ais.LatLon{Lat: -35.3133, Lon: 174.1225}
)

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMarker struct {
	kind     MarkerKind
	pos      ais.LatLon
	rotation float64
	info     Info
	removed  bool
	moves    int
}

func (m *fakeMarker) Position() ais.LatLon { return m.pos }
func (m *fakeMarker) SetPosition(p ais.LatLon) {
	m.pos = p
	m.moves++
}
func (m *fakeMarker) SetRotation(deg float64) { m.rotation = deg }
func (m *fakeMarker) SetInfo(info Info)       { m.info = info }
func (m *fakeMarker) Remove()                 { m.removed = true }

type fakeOverlay struct {
	points  []ais.LatLon
	removed bool
}

func (o *fakeOverlay) Remove() { o.removed = true }

type fakeRenderer struct {
	markers    []*fakeMarker
	trails     []*fakeOverlay
	fits       [][]ais.LatLon
	highlights []ais.LatLon
}

func (r *fakeRenderer) AddMarker(kind MarkerKind, pos ais.LatLon, rotation float64) Marker {
	m := &fakeMarker{kind: kind, pos: pos, rotation: rotation}
	r.markers = append(r.markers, m)
	return m
}

func (r *fakeRenderer) DrawTrail(points []ais.LatLon) Overlay {
	o := &fakeOverlay{points: points}
	r.trails = append(r.trails, o)
	return o
}

func (r *fakeRenderer) FitBounds(points []ais.LatLon) {
	r.fits = append(r.fits, points)
}

func (r *fakeRenderer) Highlight(pos ais.LatLon, _ time.Duration) {
	r.highlights = append(r.highlights, pos)
}

// visible returns the markers of kind that have not been removed.
func (r *fakeRenderer) visible(kind MarkerKind) []*fakeMarker {
	var out []*fakeMarker
	for _, m := range r.markers {
		if m.kind == kind && !m.removed {
			out = append(out, m)
		}
	}
	return out
}

type countingAlerter struct {
	calls int
}

func (a *countingAlerter) Alert(ais.PositionReport) { a.calls++ }

func report(id int64, lat, lon, cog float64, at time.Time) ais.PositionReport {
	return ais.PositionReport{
		VesselID:         id,
		Lat:              lat,
		Lon:              lon,
		CourseOverGround: cog,
		MessageType:      ais.MessageTypePositionReport,
		ReceivedAt:       at,
	}
}

func positionFrame(id int64, lat, lon, cog float64) []byte {
	return []byte(fmt.Sprintf(
		`{"MessageType":"PositionReport","MetaData":{"MMSI":%d,"ShipName":"TEST  "},"Message":{"PositionReport":{"UserID":%d,"Latitude":%v,"Longitude":%v,"Sog":4.2,"Cog":%v}}}`,
		id, id, lat, lon, cog,
	))
}

type harness struct {
	clock    *fakeClock
	renderer *fakeRenderer
	alerter  *countingAlerter
	monitor  *Monitor
	tracker  *Tracker
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock:    newFakeClock(),
		renderer: &fakeRenderer{},
		alerter:  &countingAlerter{},
	}
	h.monitor = NewMonitor(MonitorConfig{
		VesselID:      trackedID,
		Name:          "RTT",
		TrailCapacity: 100,
		Home:          home,
	}, h.renderer, h.alerter)
	h.tracker = New(Config{
		StaleAfter:        10 * time.Minute,
		AnimationDuration: time.Second,
	}, h.clock, h.renderer, h.monitor)
	return h
}

func approxEqual(a, b ais.LatLon) bool {
	return math.Abs(a.Lat-b.Lat) < 1e-9 && math.Abs(a.Lon-b.Lon) < 1e-9
}
