// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sailmap/internal/auth"
	"github.com/tomtom215/sailmap/internal/middleware"
)

// Router wires handlers, middleware and the relay into one http.Handler.
type Router struct {
	handler       *Handler
	sessions      *auth.SessionMiddleware
	chiMiddleware *ChiMiddleware
	relay         http.Handler
}

// NewRouter creates a router. relay serves WebSocket upgrades.
func NewRouter(handler *Handler, sessions *auth.SessionMiddleware, mw *ChiMiddleware, relay http.Handler) *Router {
	return &Router{
		handler:       handler,
		sessions:      sessions,
		chiMiddleware: mw,
		relay:         relay,
	}
}

// SetupChi builds the route table.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	// The map UI connects to the bare host; /ws is the explicit mount.
	r.Handle("/ws", router.relay)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if websocket.IsWebSocketUpgrade(req) {
			router.relay.ServeHTTP(w, req)
			return
		}
		router.handler.Status(w, req)
	})
	r.Get("/status", router.handler.Status)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.sessions.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/register", router.handler.Register)
			r.Post("/logout", router.handler.Logout)
			r.Get("/me", router.handler.Me)
		})

		r.Route("/routes", func(r chi.Router) {
			r.Get("/", router.handler.ListRoutes)
			r.Post("/", router.handler.CreateRoute)
			r.Delete("/{id}", router.handler.DeleteRoute)
		})

		r.Post("/saveRoutes", router.handler.SaveRoutes)
		r.Get("/loadRoutes", router.handler.LoadRoutes)

		r.Get("/weather", router.handler.Weather)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, CodeNotFound, "Not found", nil)
	})

	return r
}
