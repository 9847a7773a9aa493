// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package services provides suture.Service wrappers for long-running
components.

HTTPServerService translates http.Server's ListenAndServe/Shutdown pair into
suture's context-aware Serve. The other wrappers delegate to a component's
RunWithContext:

  - RelayService: relay.Relay (messaging layer)
  - DatabaseGCService: database.DB value-log GC (data layer)
  - TrackerService: tracker.Runner (aiswatch)
  - ConnectionService: connection.Supervisor (aiswatch)

The interfaces here are satisfied structurally so this package does not
import the components it supervises.
*/
package services
