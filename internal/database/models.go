// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package database

import (
	"time"

	"github.com/goccy/go-json"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a login session referenced by an opaque cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Route is a saved sailing route. OwnerID is empty for routes saved
// without logging in.
type Route struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id,omitempty"`
	Name       string          `json:"name"`
	DistanceKm float64         `json:"distance_km"`
	Color      string          `json:"color"`
	GeoJSON    json.RawMessage `json:"geojson"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewRoute holds the fields supplied when saving a route.
type NewRoute struct {
	OwnerID    string
	Name       string
	DistanceKm float64
	Color      string
	GeoJSON    json.RawMessage
}

// LegacyRouteBatch is one payload saved through the old saveRoutes endpoint.
type LegacyRouteBatch struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
