// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sailmap/internal/auth"
	"github.com/tomtom215/sailmap/internal/database"
	"github.com/tomtom215/sailmap/internal/weather"
)

// Store is the persistence the handlers use. Satisfied by *database.DB.
type Store interface {
	Ping(ctx context.Context) error
	CreateRoute(ctx context.Context, in database.NewRoute) (string, error)
	ListRoutes(ctx context.Context, ownerID string) ([]database.Route, error)
	DeleteRoute(ctx context.Context, id, ownerID string) (bool, error)
	SaveLegacyRoutes(ctx context.Context, data json.RawMessage) (string, error)
	LoadLegacyRoutes(ctx context.Context) ([]json.RawMessage, error)
}

// Accounts registers and authenticates users. Satisfied by *auth.Service.
type Accounts interface {
	Register(ctx context.Context, username, password, displayName string) (*database.User, error)
	Login(ctx context.Context, username, password string) (*database.User, error)
	User(ctx context.Context, id string) (*database.User, error)
}

// WeatherLookup fetches current conditions. Satisfied by *weather.Client.
type WeatherLookup interface {
	Enabled() bool
	Conditions(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

// Handler holds the dependencies of the REST handlers.
type Handler struct {
	store     Store
	accounts  Accounts
	sessions  *auth.SessionMiddleware
	weather   WeatherLookup
	startTime time.Time
}

// NewHandler creates a Handler. weather may be nil when lookups are not
// configured.
func NewHandler(store Store, accounts Accounts, sessions *auth.SessionMiddleware, wx WeatherLookup) *Handler {
	return &Handler{
		store:     store,
		accounts:  accounts,
		sessions:  sessions,
		weather:   wx,
		startTime: time.Now(),
	}
}
