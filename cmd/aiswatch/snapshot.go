// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sailmap/internal/connection"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/scene"
	"github.com/tomtom215/sailmap/internal/tracker"
)

// snapshotResponse is served at /snapshot.
type snapshotResponse struct {
	Connection connection.Status `json:"connection"`
	Tracked    *tracker.Status   `json:"tracked,omitempty"`
	Vessels    int               `json:"vessels"`
	Scene      scene.Snapshot    `json:"scene"`
}

type sceneSnapshotter interface {
	Snapshot() scene.Snapshot
}

type linkStatus interface {
	Status() connection.Status
}

// snapshotHandler exposes the in-memory map for inspection and scraping.
type snapshotHandler struct {
	scene   sceneSnapshotter
	tracker trackerDoer
	link    linkStatus
	timeout time.Duration
}

func newSnapshotRouter(h *snapshotHandler) http.Handler {
	if h.timeout <= 0 {
		h.timeout = commandTimeout
	}
	r := chi.NewRouter()
	r.Get("/snapshot", h.serveSnapshot)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *snapshotHandler) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	resp := snapshotResponse{Connection: h.link.Status()}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var st tracker.Status
	err := h.tracker.Do(ctx, func(t *tracker.Tracker) {
		st = t.Monitor().Status()
		resp.Vessels = t.Len()
	})
	if err != nil {
		// Runner stopped or restarting; the scene is still worth serving.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("tracker status unavailable")
	} else {
		resp.Tracked = &st
	}
	resp.Scene = h.scene.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode snapshot")
	}
}
