// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/sailmap/internal/weather"
)

// WeatherRequest holds the query of GET /api/weather.
type WeatherRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Weather returns current conditions at ?lat=&lon=.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	if h.weather == nil || !h.weather.Enabled() {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Weather lookups are not configured", nil)
		return
	}

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "lat and lon query parameters are required", nil)
		return
	}

	req := WeatherRequest{Lat: lat, Lon: lon}
	if !validateRequest(w, r, &req) {
		return
	}

	cond, err := h.weather.Conditions(r.Context(), req.Lat, req.Lon)
	switch {
	case err == nil:
		respondData(w, r, http.StatusOK, cond)
	case errors.Is(err, weather.ErrDisabled):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Weather lookups are not configured", nil)
	case errors.Is(err, weather.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Weather service temporarily unavailable", err)
	default:
		respondError(w, r, http.StatusBadGateway, CodeUnavailable, "Weather lookup failed", err)
	}
}
