// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package api provides the HTTP surface of the relay server.

The Chi router mounts:

  - /ws and upgrade requests on /: the AIS relay
  - /status, /api/v1/health/live, /api/v1/health/ready: liveness and readiness
  - /api/routes: save, list and delete sailing routes
  - /api/saveRoutes, /api/loadRoutes: batch endpoints used by the old map UI
  - /api/auth/*: register, login, logout and current user
  - /api/weather: current conditions at a point
  - /metrics: Prometheus exposition

JSON endpoints answer with the APIResponse envelope. Authentication is
optional for everything except deleting routes and listing one's own.
*/
package api
