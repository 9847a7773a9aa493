// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package config provides layered configuration for the Sailmap relay server and
the aiswatch client.

# Configuration Sources

Values are resolved in order of increasing priority:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/sailmap/config.yaml
 3. Environment variables, mapped explicitly (AIS_API_KEY -> ais.api_key)

# Environment Variables

Upstream AIS stream:
  - AIS_API_KEY: aisstream.io API key (required by the relay server)
  - AIS_STREAM_URL: upstream endpoint (default: wss://stream.aisstream.io/v0/stream)
  - AIS_BOUNDING_BOXES: "lat1,lon1,lat2,lon2;..." (default: New Zealand waters)
  - AIS_MESSAGE_TYPES: comma separated allow-list
  - AIS_KEEPALIVE_INTERVAL: upstream ping interval (default: 30s)

Server:
  - PORT / HTTP_PORT: listen port (default: 3000)
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - ENVIRONMENT: development, staging or production

Storage, sessions and weather:
  - DATABASE_PATH: BadgerDB directory (default: /data/sailmap)
  - SESSION_TIMEOUT, SESSION_COOKIE_NAME, BCRYPT_COST
  - OPENWEATHERMAP_API_KEY: enables /api/weather when set

Tracker and aiswatch:
  - TRACKED_MMSI: distinguished vessel (default: 512120000)
  - HOME_LATITUDE / HOME_LONGITUDE: fallback location for the tracked vessel
  - RELAY_URL: relay WebSocket endpoint (default: ws://localhost:3000/ws)
  - CLIENT_RECONNECT_DELAY (default: 3s), CLIENT_IDLE_TIMEOUT (default: 15m)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Load validates every section and fails with ErrMissingAPIKey when no upstream
credential is configured. LoadClient validates only the client, tracker and
logging sections.
*/
package config
