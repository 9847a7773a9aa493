// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package database is the persistence layer for Sailmap.
//
// # Overview
//
// Everything the REST API stores lives in a single BadgerDB instance:
// user accounts, login sessions and saved sailing routes. Values are JSON
// encoded with goccy/go-json.
//
// # Key Layout
//
//	user:<id>                   User
//	username:<lowercase name>   user id (uniqueness index)
//	session:<id>                Session, stored with a badger TTL
//	route:<id>                  Route
//	route_owner:<owner>:<id>    empty marker (per-owner index)
//	legacy_routes:<id>          raw payload of the old saveRoutes endpoint
//
// Route ids are UUIDv7, so iterating route:<id> keys yields routes in
// creation order.
//
// # Sessions
//
// Sessions expire through badger's native TTL; an expired session simply
// reads as ErrNotFound. No cleanup job is needed for them.
//
// # Maintenance
//
// DB.RunWithContext runs value log garbage collection on an interval and is
// registered with the supervisor tree.
package database
