// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package main is aiswatch, a terminal client for the Sailmap relay.

aiswatch connects to the relay, keeps a live registry of every vessel in the
subscribed area and follows one tracked vessel. It rings the terminal bell on
the first live sighting of the tracked vessel and shows its last known
location when it has not been seen after the grace period.

# Commands

Type a command and press enter. Any input counts as activity and keeps the
connection from being paused for inactivity.

	r  reconnect (after an idle pause or a drop)
	t  toggle the tracked vessel's trail
	s  show connection and tracked vessel status
	q  quit

# HTTP

When CLIENT_METRICS_ADDR is set, aiswatch serves:

	GET /snapshot  markers, trails, view bounds and tracked vessel status (JSON)
	GET /healthz   liveness
	GET /metrics   Prometheus metrics
*/
package main
