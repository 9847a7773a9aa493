// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package services

import (
	"context"
)

// ContextRunner is a component whose background work runs until ctx is
// canceled.
//
// Satisfied by *relay.Relay, *database.DB, *tracker.Runner and
// *connection.Supervisor.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// runnerService adapts a ContextRunner to suture.Service.
type runnerService struct {
	runner ContextRunner
	name   string
}

// Serve implements suture.Service.
func (s *runnerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *runnerService) String() string {
	return s.name
}

// RelayService supervises the AIS relay. While it is stopped, new client
// connections are refused with "try again later".
type RelayService struct{ runnerService }

// NewRelayService wraps the relay.
func NewRelayService(relay ContextRunner) *RelayService {
	return &RelayService{runnerService{runner: relay, name: "ais-relay"}}
}

// DatabaseGCService supervises the store's periodic value-log GC.
type DatabaseGCService struct{ runnerService }

// NewDatabaseGCService wraps the store.
func NewDatabaseGCService(db ContextRunner) *DatabaseGCService {
	return &DatabaseGCService{runnerService{runner: db, name: "database-gc"}}
}

// TrackerService supervises the tracker runner. Tracker state survives a
// restart because it lives in the runner, not in Serve.
type TrackerService struct{ runnerService }

// NewTrackerService wraps the tracker runner.
func NewTrackerService(runner ContextRunner) *TrackerService {
	return &TrackerService{runnerService{runner: runner, name: "tracker-runner"}}
}

// ConnectionService supervises the relay connection supervisor.
type ConnectionService struct{ runnerService }

// NewConnectionService wraps the connection supervisor.
func NewConnectionService(conn ContextRunner) *ConnectionService {
	return &ConnectionService{runnerService{runner: conn, name: "connection-supervisor"}}
}
