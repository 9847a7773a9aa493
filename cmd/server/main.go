// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/api"
	"github.com/tomtom215/sailmap/internal/auth"
	"github.com/tomtom215/sailmap/internal/config"
	"github.com/tomtom215/sailmap/internal/database"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/relay"
	"github.com/tomtom215/sailmap/internal/supervisor"
	"github.com/tomtom215/sailmap/internal/supervisor/services"
	"github.com/tomtom215/sailmap/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("upstream", cfg.AIS.URL).
		Int("bounding_boxes", len(cfg.AIS.BoundingBoxes)).
		Str("db_path", cfg.Database.Path).
		Bool("in_memory", cfg.Database.InMemory).
		Msg("Starting Sailmap relay server")

	db, err := database.Open(database.Config{
		Path:     cfg.Database.Path,
		InMemory: cfg.Database.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	aisRelay, err := newRelay(cfg)
	if err != nil {
		// Validate already parsed the boxes; this only guards against drift.
		logging.Error().Err(err).Msg("Invalid AIS subscription")
		return
	}

	wx := weather.NewClient(weather.Config{
		APIKey:            cfg.Weather.APIKey,
		BaseURL:           cfg.Weather.BaseURL,
		Timeout:           cfg.Weather.Timeout,
		CacheTTL:          cfg.Weather.CacheTTL,
		RequestsPerSecond: cfg.Weather.RequestsPerSecond,
		Burst:             cfg.Weather.Burst,
	})
	defer wx.Close()
	if !wx.Enabled() {
		logging.Info().Msg("Weather lookups disabled (WEATHER_API_KEY not set)")
	}

	sessions := auth.NewSessionMiddleware(db, auth.SessionConfig{
		CookieName: cfg.Security.CookieName,
		SessionTTL: cfg.Security.SessionTimeout,
		Secure:     cfg.Security.CookieSecure,
	})
	accounts := auth.NewService(db, cfg.Security.BcryptCost)

	handler := api.NewHandler(db, accounts, sessions, wx)
	mw := api.NewChiMiddleware(api.MiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, sessions, mw, aisRelay)

	// WriteTimeout stays zero: relay sessions are long-lived and hijacked.
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	tree.AddDataService(services.NewDatabaseGCService(db))
	tree.AddMessagingService(services.NewRelayService(aisRelay))
	tree.AddAPIService(services.NewHTTPServerService("http-server", server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newRelay builds the relay and its upstream dialer from the AIS section.
func newRelay(cfg *config.Config) (*relay.Relay, error) {
	boxes, err := cfg.AIS.ParseBoundingBoxes()
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}
	sub := ais.Subscription{
		APIKey:             cfg.AIS.APIKey,
		BoundingBoxes:      make([]ais.BoundingBox, 0, len(boxes)),
		FilterMessageTypes: cfg.AIS.MessageTypes,
	}
	for _, b := range boxes {
		sub.BoundingBoxes = append(sub.BoundingBoxes, ais.BoundingBox(b))
	}

	dial := relay.NewUpstreamDialer(ais.UpstreamConfig{
		URL:              cfg.AIS.URL,
		Subscription:     sub,
		HandshakeTimeout: cfg.AIS.HandshakeTimeout,
		WriteTimeout:     cfg.AIS.WriteTimeout,
		FrameBuffer:      cfg.AIS.ForwardBuffer,
	})

	return relay.New(relay.Config{
		APIKey:            cfg.AIS.APIKey,
		KeepAliveInterval: cfg.AIS.KeepAliveInterval,
		WriteTimeout:      cfg.AIS.WriteTimeout,
		HandshakeTimeout:  cfg.AIS.HandshakeTimeout,
		AllowedOrigins:    cfg.Security.CORSOrigins,
		TrackedVesselID:   cfg.Tracker.TrackedMMSI,
	}, dial), nil
}
