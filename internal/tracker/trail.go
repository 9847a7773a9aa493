// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
)

// TrailPoint is one recorded position of the tracked vessel.
type TrailPoint struct {
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Time time.Time `json:"time"`
}

// Trail is a bounded FIFO of trail points; the oldest point is dropped on overflow.
type Trail struct {
	points   []TrailPoint
	head     int
	size     int
	capacity int
}

// NewTrail creates a trail holding at most capacity points.
func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{
		points:   make([]TrailPoint, capacity),
		capacity: capacity,
	}
}

// Append adds p, evicting the oldest point when full.
func (t *Trail) Append(p TrailPoint) {
	idx := (t.head + t.size) % t.capacity
	t.points[idx] = p
	if t.size < t.capacity {
		t.size++
		return
	}
	t.head = (t.head + 1) % t.capacity
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	return t.size
}

// Points returns a copy of the points, oldest first.
func (t *Trail) Points() []TrailPoint {
	out := make([]TrailPoint, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.points[(t.head+i)%t.capacity]
	}
	return out
}

// Path returns the points as coordinates, oldest first.
func (t *Trail) Path() []ais.LatLon {
	out := make([]ais.LatLon, t.size)
	for i := 0; i < t.size; i++ {
		p := t.points[(t.head+i)%t.capacity]
		out[i] = ais.LatLon{Lat: p.Lat, Lon: p.Lon}
	}
	return out
}
