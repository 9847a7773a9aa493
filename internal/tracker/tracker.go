// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package tracker maintains the client-side picture of live vessels.
//
// A Tracker consumes relayed AIS frames, keeps one entity per vessel,
// animates marker movement and evicts vessels that have gone quiet. The
// distinguished tracked vessel is handed to a Monitor, which owns its trail,
// the first sighting alert and the fallback marker.
//
// Tracker, Animator and Monitor are not safe for concurrent use. Runner
// serializes all access on a single goroutine.
package tracker

import (
	"errors"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

// Config configures a Tracker.
type Config struct {
	// StaleAfter is how long a vessel may stay silent before eviction.
	StaleAfter time.Duration

	// AnimationDuration is the time a marker takes to reach a new position.
	AnimationDuration time.Duration
}

func (c *Config) applyDefaults() {
	if c.StaleAfter <= 0 {
		c.StaleAfter = 10 * time.Minute
	}
	if c.AnimationDuration <= 0 {
		c.AnimationDuration = time.Second
	}
}

// Entity is one live vessel in the registry.
type Entity struct {
	ID            int64
	DisplayCourse float64
	Report        ais.PositionReport
	Marker        Marker
}

// CurrentPosition returns the marker's live position, which lags the last
// report while an animation is running.
func (e *Entity) CurrentPosition() ais.LatLon {
	return e.Marker.Position()
}

// Tracker is the registry of live vessels.
type Tracker struct {
	cfg      Config
	clock    Clock
	renderer Renderer
	animator *Animator
	monitor  *Monitor

	entities map[int64]*Entity
	lastSeen map[int64]time.Time
}

// New creates a Tracker. monitor may be nil when no vessel is tracked.
func New(cfg Config, clock Clock, renderer Renderer, monitor *Monitor) *Tracker {
	cfg.applyDefaults()
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{
		cfg:      cfg,
		clock:    clock,
		renderer: renderer,
		animator: NewAnimator(clock),
		monitor:  monitor,
		entities: make(map[int64]*Entity),
		lastSeen: make(map[int64]time.Time),
	}
}

// HandleFrame decodes one relayed frame and ingests it. Frames that are not
// position reports are skipped without error. A malformed frame is reported
// so the caller can drop it and carry on.
func (t *Tracker) HandleFrame(frame []byte) error {
	report, err := ais.DecodePositionReport(frame, t.clock.Now())
	if err != nil {
		if errors.Is(err, ais.ErrNotPositionReport) {
			metrics.RecordTrackerFrame("ignored")
			return nil
		}
		metrics.RecordTrackerFrame("invalid")
		return err
	}

	metrics.RecordTrackerFrame("position")
	t.Ingest(report)
	return nil
}

// Ingest applies one decoded report to the registry and then sweeps stale
// vessels.
func (t *Tracker) Ingest(report ais.PositionReport) {
	tracked := t.isTracked(report.VesselID)
	if tracked {
		t.monitor.Observe(report)
	}

	pos := report.Position()
	info := Info{
		VesselID:         report.VesselID,
		Name:             report.ShipName,
		SpeedOverGround:  report.SpeedOverGround,
		CourseOverGround: report.CourseOverGround,
		UpdatedAt:        report.ReceivedAt,
		Live:             true,
	}

	if e, ok := t.entities[report.VesselID]; ok {
		t.animator.AnimateTo(e.ID, e.Marker, pos, t.cfg.AnimationDuration)
		e.DisplayCourse = rotationFor(report, tracked)
		e.Report = report
		e.Marker.SetRotation(e.DisplayCourse)
		e.Marker.SetInfo(info)
	} else {
		kind := KindVessel
		if tracked {
			kind = KindTrackedVessel
		}
		rotation := rotationFor(report, tracked)
		marker := t.renderer.AddMarker(kind, pos, rotation)
		marker.SetInfo(info)
		t.entities[report.VesselID] = &Entity{
			ID:            report.VesselID,
			DisplayCourse: rotation,
			Report:        report,
			Marker:        marker,
		}
		metrics.TrackerEntities.Set(float64(len(t.entities)))
	}

	t.lastSeen[report.VesselID] = report.ReceivedAt
	t.Sweep(report.ReceivedAt)
}

// Sweep evicts every vessel, except the tracked one, last seen more than
// StaleAfter before now. It returns the number evicted.
func (t *Tracker) Sweep(now time.Time) int {
	evicted := 0
	for id, seen := range t.lastSeen {
		if t.isTracked(id) || now.Sub(seen) <= t.cfg.StaleAfter {
			continue
		}

		if e, ok := t.entities[id]; ok {
			t.animator.Cancel(id)
			e.Marker.Remove()
			delete(t.entities, id)
		}
		delete(t.lastSeen, id)
		evicted++

		logging.Debug().
			Int64("mmsi", id).
			Dur("silent_for", now.Sub(seen)).
			Msg("evicted stale vessel")
	}

	if evicted > 0 {
		metrics.TrackerEvictions.Add(float64(evicted))
		metrics.TrackerEntities.Set(float64(len(t.entities)))
	}
	return evicted
}

// Tick advances marker animations by one display frame. It returns the
// number of animations still running.
func (t *Tracker) Tick() int {
	return t.animator.Tick()
}

// CheckFallback runs the tracked-vessel fallback check.
func (t *Tracker) CheckFallback() bool {
	if t.monitor == nil {
		return false
	}
	return t.monitor.CheckFallback()
}

// ToggleTrail toggles the tracked vessel's trail overlay.
func (t *Tracker) ToggleTrail() TrailResult {
	if t.monitor == nil {
		return TrailInsufficientData
	}
	return t.monitor.ToggleTrail()
}

// Monitor returns the tracked-vessel monitor, or nil.
func (t *Tracker) Monitor() *Monitor {
	return t.monitor
}

// Entity returns the entity for id.
func (t *Tracker) Entity(id int64) (*Entity, bool) {
	e, ok := t.entities[id]
	return e, ok
}

// LastSeen returns when id last reported.
func (t *Tracker) LastSeen(id int64) (time.Time, bool) {
	seen, ok := t.lastSeen[id]
	return seen, ok
}

// Len returns the number of live vessels.
func (t *Tracker) Len() int {
	return len(t.entities)
}

// Animating reports whether id has a marker animation in progress.
func (t *Tracker) Animating(id int64) bool {
	return t.animator.Running(id)
}

func (t *Tracker) fallbackChecked() bool {
	return t.monitor == nil || t.monitor.fallbackChecked
}

func (t *Tracker) isTracked(id int64) bool {
	return t.monitor != nil && id == t.monitor.VesselID()
}

// rotationFor returns the marker rotation. The tracked vessel uses an
// upright icon that is never rotated.
func rotationFor(report ais.PositionReport, tracked bool) float64 {
	if tracked {
		return 0
	}
	return report.CourseOverGround
}
