// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package middleware provides chi-compatible HTTP middleware for the relay server.

Key Components:

  - RequestID: UUID-based request tracking, propagated into logging context
  - PrometheusMetrics: request counters and latency histograms keyed by route pattern
  - AccessLog: one structured zerolog line per request

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

All wrappers preserve http.Hijacker so the /ws upgrade keeps working behind them.
*/
package middleware
