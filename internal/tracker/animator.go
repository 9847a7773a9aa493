// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"math"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
)

// EaseOutCubic maps linear progress in [0, 1] to 1 - (1-p)^3.
func EaseOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	inv := 1 - p
	return 1 - inv*inv*inv
}

type animation struct {
	marker   Marker
	from     ais.LatLon
	to       ais.LatLon
	start    time.Time
	duration time.Duration
}

// Animator moves markers towards their targets, one animation per entity.
//
// Progress is derived from elapsed clock time on every Tick, so a slow or
// irregular frame rate only lowers smoothness, never the arrival time.
// A new AnimateTo for the same entity supersedes the running one, starting
// from wherever the marker currently is.
type Animator struct {
	clock  Clock
	active map[int64]*animation
}

// NewAnimator creates an Animator reading time from clock.
func NewAnimator(clock Clock) *Animator {
	return &Animator{
		clock:  clock,
		active: make(map[int64]*animation),
	}
}

// AnimateTo starts moving m to target over d.
func (a *Animator) AnimateTo(id int64, m Marker, target ais.LatLon, d time.Duration) {
	if d <= 0 {
		m.SetPosition(target)
		delete(a.active, id)
		return
	}
	a.active[id] = &animation{
		marker:   m,
		from:     m.Position(),
		to:       target,
		start:    a.clock.Now(),
		duration: d,
	}
}

// Tick advances every running animation and drops the ones that finished.
// It returns the number still running.
func (a *Animator) Tick() int {
	now := a.clock.Now()
	for id, anim := range a.active {
		progress := float64(now.Sub(anim.start)) / float64(anim.duration)
		if progress >= 1 {
			anim.marker.SetPosition(anim.to)
			delete(a.active, id)
			continue
		}
		anim.marker.SetPosition(interpolate(anim.from, anim.to, EaseOutCubic(progress)))
	}
	return len(a.active)
}

// Cancel stops the animation for id, leaving the marker where it is.
func (a *Animator) Cancel(id int64) {
	delete(a.active, id)
}

// Running reports whether id has an animation in progress.
func (a *Animator) Running(id int64) bool {
	_, ok := a.active[id]
	return ok
}

// Len returns the number of running animations.
func (a *Animator) Len() int {
	return len(a.active)
}

// interpolate moves along the shorter way round the antimeridian.
func interpolate(from, to ais.LatLon, t float64) ais.LatLon {
	dLon := to.Lon - from.Lon
	if dLon > 180 {
		dLon -= 360
	} else if dLon < -180 {
		dLon += 360
	}

	lon := from.Lon + dLon*t
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}

	return ais.LatLon{
		Lat: roundCoord(from.Lat + (to.Lat-from.Lat)*t),
		Lon: roundCoord(lon),
	}
}

// roundCoord trims float noise below a nanodegree.
func roundCoord(deg float64) float64 {
	return math.Round(deg*1e9) / 1e9
}
