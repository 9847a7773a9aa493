// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package supervisor provides process supervision for both binaries using
suture v4.

# Server Tree

	RootSupervisor ("sailmap")
	├── DataSupervisor ("data-layer")
	│   └── DatabaseGCService
	├── MessagingSupervisor ("messaging-layer")
	│   └── RelayService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

# Client Tree

	RootSupervisor ("aiswatch")
	└── ClientSupervisor ("client-layer")
	    ├── ConnectionService
	    ├── TrackerService
	    └── HTTPServerService (snapshot + metrics)

Each layer counts failures independently, so a relay that keeps failing
backs off without restarting the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(services.NewDatabaseGCService(db))
	tree.AddMessagingService(services.NewRelayService(relay))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Service Contract

Wrapped components expose RunWithContext(ctx) error and must return promptly
once ctx is canceled. Returning an error other than the context's makes
suture restart the component after backoff:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Supervisor events are logged through sutureslog and the zerolog slog adapter.
UnstoppedServiceReport lists services that ignored cancellation.
*/
package supervisor
