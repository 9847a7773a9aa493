// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package main is the entry point for the Sailmap relay server.

The server keeps the aisstream.io API key off the browser: map clients open a
WebSocket to this process and each connection gets its own authenticated
upstream stream. The same process serves the route, account and weather REST
API used by the route planner.

# Application Architecture

	RootSupervisor ("sailmap")
	├── DataSupervisor ("data-layer")
	│   └── database-gc (BadgerDB value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   └── ais-relay
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Initialization order:

 1. Configuration: Koanf v2 with defaults, optional config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: BadgerDB for users, sessions and routes
 4. Relay: per-connection upstream sessions to aisstream.io
 5. Weather: OpenWeatherMap client behind a rate limiter and circuit breaker
 6. Supervisor tree and HTTP server

# Endpoints

	GET  /, /ws                 WebSocket relay (upgrade requests)
	GET  /, /status             {"status":"Proxy server running"}
	GET  /metrics               Prometheus metrics
	GET  /api/v1/health/live    liveness
	GET  /api/v1/health/ready   readiness (database ping)
	POST /api/auth/register     create account and log in
	POST /api/auth/login        log in
	POST /api/auth/logout       log out
	GET  /api/auth/me           current user
	GET  /api/routes            list routes (?owner=me)
	POST /api/routes            create route
	DEL  /api/routes/{id}       delete own route
	POST /api/saveRoutes        legacy save
	GET  /api/loadRoutes        legacy load
	GET  /api/weather           conditions at ?lat=&lon=

# Configuration

AIS_API_KEY is required; the process exits when it is missing. See the config
package for the full list of environment variables.

# Graceful Shutdown

SIGINT or SIGTERM cancels the root context. The HTTP server drains, every
relay session closes its upstream, and the database is closed last.
*/
package main
