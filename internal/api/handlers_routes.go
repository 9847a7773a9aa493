// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sailmap/internal/auth"
	"github.com/tomtom215/sailmap/internal/database"
	"github.com/tomtom215/sailmap/internal/logging"
)

const (
	defaultRouteName  = "Unnamed Route"
	defaultRouteColor = "#3388ff"
)

// CreateRouteRequest is the body of POST /api/routes.
type CreateRouteRequest struct {
	Name       string          `json:"name" validate:"max=100"`
	DistanceKm *float64        `json:"distanceKm" validate:"omitempty,gte=0"`
	Color      string          `json:"color" validate:"omitempty,hexcolor"`
	GeoJSON    json.RawMessage `json:"geojson" validate:"required"`
}

// LegacySaveRequest is the body of POST /api/saveRoutes.
type LegacySaveRequest struct {
	Routes json.RawMessage `json:"routes" validate:"required"`
}

// RouteView is a route as returned to clients.
type RouteView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DistanceKm float64         `json:"distanceKm"`
	Color      string          `json:"color"`
	GeoJSON    json.RawMessage `json:"geojson"`
	CreatedAt  time.Time       `json:"createdAt"`
	Owned      bool            `json:"owned"`
}

func routeView(rt *database.Route, userID string) RouteView {
	return RouteView{
		ID:         rt.ID,
		Name:       rt.Name,
		DistanceKm: rt.DistanceKm,
		Color:      rt.Color,
		GeoJSON:    rt.GeoJSON,
		CreatedAt:  rt.CreatedAt,
		Owned:      userID != "" && rt.OwnerID == userID,
	}
}

// CreateRoute saves a route owned by the current user, or anonymously.
// The distance is computed from the geometry when the client omits it.
func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req CreateRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, _ := auth.CurrentUserID(r.Context())
	in := database.NewRoute{
		OwnerID: userID,
		Name:    req.Name,
		Color:   req.Color,
		GeoJSON: req.GeoJSON,
	}
	if in.Name == "" {
		in.Name = defaultRouteName
	}
	if in.Color == "" {
		in.Color = defaultRouteColor
	}

	if req.DistanceKm != nil {
		in.DistanceKm = *req.DistanceKm
	} else {
		km, err := routeLengthKm(req.GeoJSON)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, CodeBadRequest, "geojson must contain a LineString when distanceKm is omitted", nil)
			return
		}
		in.DistanceKm = km
	}

	id, err := h.store.CreateRoute(r.Context(), in)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to save route", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("route_id", id).
		Bool("anonymous", userID == "").
		Float64("distance_km", in.DistanceKm).
		Msg("route saved")
	respondData(w, r, http.StatusCreated, map[string]string{"id": id})
}

// ListRoutes lists all routes, or only the caller's with ?owner=me.
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	userID, loggedIn := auth.CurrentUserID(r.Context())

	owner := ""
	if r.URL.Query().Get("owner") == "me" {
		if !loggedIn {
			respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Login required", nil)
			return
		}
		owner = userID
	}

	routes, err := h.store.ListRoutes(r.Context(), owner)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to load routes", err)
		return
	}

	views := make([]RouteView, 0, len(routes))
	for i := range routes {
		views = append(views, routeView(&routes[i], userID))
	}
	respondData(w, r, http.StatusOK, views)
}

// DeleteRoute deletes one of the caller's routes. Routes that do not exist
// and routes owned by someone else both answer 404.
func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.CurrentUserID(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Login required", nil)
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.store.DeleteRoute(r.Context(), id, userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to delete route", err)
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Route not found", nil)
		return
	}

	respondData(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// SaveRoutes stores a batch of routes from the old map UI. The reply is
// bare {"id": ...} because that client reads it directly.
func (h *Handler) SaveRoutes(w http.ResponseWriter, r *http.Request) {
	var req LegacySaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.store.SaveLegacyRoutes(r.Context(), req.Routes)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to save routes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// LoadRoutes returns every saved batch as a bare array of batches.
func (h *Handler) LoadRoutes(w http.ResponseWriter, r *http.Request) {
	batches, err := h.store.LoadLegacyRoutes(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to load routes", err)
		return
	}
	if batches == nil {
		batches = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, batches)
}
