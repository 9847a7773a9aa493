// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/config"
	"github.com/tomtom215/sailmap/internal/connection"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/scene"
	"github.com/tomtom215/sailmap/internal/supervisor"
	"github.com/tomtom215/sailmap/internal/supervisor/services"
	"github.com/tomtom215/sailmap/internal/tracker"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("relay_url", cfg.Client.RelayURL).
		Int64("tracked_mmsi", cfg.Tracker.TrackedMMSI).
		Str("tracked_name", cfg.Tracker.TrackedName).
		Msg("Starting aiswatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := scene.New()
	monitor := tracker.NewMonitor(tracker.MonitorConfig{
		VesselID:      cfg.Tracker.TrackedMMSI,
		Name:          cfg.Tracker.TrackedName,
		TrailCapacity: cfg.Tracker.TrailCapacity,
		Home:          ais.LatLon{Lat: cfg.Tracker.HomeLatitude, Lon: cfg.Tracker.HomeLongitude},
	}, view, tracker.AlerterFunc(func(report ais.PositionReport) {
		logging.Info().
			Int64("vessel_id", report.VesselID).
			Float64("lat", report.Lat).
			Float64("lon", report.Lon).
			Msg("Tracked vessel is live")
		fmt.Fprintf(os.Stdout, "\a%s is live at %.5f, %.5f\n", cfg.Tracker.TrackedName, report.Lat, report.Lon)
	}))

	trk := tracker.New(tracker.Config{
		StaleAfter:        cfg.Tracker.StaleAfter,
		AnimationDuration: cfg.Tracker.AnimationDuration,
	}, tracker.SystemClock{}, view, monitor)
	runner := tracker.NewRunner(trk, tracker.RunnerConfig{
		FrameRate:     cfg.Tracker.FrameRate,
		FallbackGrace: cfg.Tracker.FallbackGrace,
	})

	link := connection.New(connection.Config{
		ReconnectDelay: cfg.Client.ReconnectDelay,
		IdleTimeout:    cfg.Client.IdleTimeout,
		OnFrame: func(frame []byte) {
			if err := runner.Submit(ctx, frame); err != nil && !errors.Is(err, context.Canceled) {
				logging.Warn().Err(err).Msg("frame dropped")
			}
		},
		OnStatus: func(st connection.Status) {
			logging.Info().Str("state", st.Name).Bool("paused", st.Paused).Msg(st.Text)
		},
	}, connection.WebSocketDialer{URL: cfg.Client.RelayURL})

	server := &http.Server{
		Addr: cfg.Client.MetricsAddr,
		Handler: newSnapshotRouter(&snapshotHandler{
			scene:   view,
			tracker: runner,
			link:    link,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewClientTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddClientService(services.NewTrackerService(runner))
	tree.AddClientService(services.NewConnectionService(link))
	if cfg.Client.MetricsAddr != "" {
		tree.AddClientService(services.NewHTTPServerService("snapshot-server", server, 5*time.Second))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Stdin cannot be interrupted; the goroutine is abandoned at exit.
	go func() {
		c := &console{link: link, tracker: runner, out: os.Stdout}
		if c.run(ctx, os.Stdin) {
			logging.Info().Msg("Quit requested")
			cancel()
		}
	}()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("aiswatch stopped")
}
