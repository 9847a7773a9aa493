// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sailmap/config.yaml",
	"/etc/sailmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultAISStreamURL is the aisstream.io WebSocket endpoint.
const DefaultAISStreamURL = "wss://stream.aisstream.io/v0/stream"

// DefaultMessageTypes are the three position report subtypes the relay subscribes to.
var DefaultMessageTypes = []string{
	"PositionReport",
	"StandardClassBPositionReport",
	"ExtendedClassBPositionReport",
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		AIS: AISConfig{
			APIKey: "",
			URL:    DefaultAISStreamURL,
			// New Zealand waters
			BoundingBoxes:     []string{"-47.0,166.0,-34.0,179.0"},
			MessageTypes:      append([]string(nil), DefaultMessageTypes...),
			KeepAliveInterval: 30 * time.Second,
			HandshakeTimeout:  10 * time.Second,
			WriteTimeout:      10 * time.Second,
			ForwardBuffer:     256,
		},
		Server: ServerConfig{
			Port:            3000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			SessionTimeout:    24 * time.Hour,
			CookieName:        "sailmap_session",
			CookieSecure:      false,
			BcryptCost:        10,
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			LoginRateLimit:    10,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path:     "/data/sailmap",
			InMemory: false,
		},
		Weather: WeatherConfig{
			APIKey:            "",
			BaseURL:           "https://api.openweathermap.org",
			Timeout:           10 * time.Second,
			CacheTTL:          10 * time.Minute,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Tracker: TrackerConfig{
			TrackedMMSI:       512120000,
			TrackedName:       "RTT",
			StaleAfter:        10 * time.Minute,
			AnimationDuration: time.Second,
			FrameRate:         60,
			FallbackGrace:     30 * time.Second,
			TrailCapacity:     100,
			// Opua, Bay of Islands
			HomeLatitude:  -35.3133,
			HomeLongitude: 174.1225,
		},
		Client: ClientConfig{
			RelayURL:       "ws://localhost:3000/ws",
			ReconnectDelay: 3 * time.Second,
			IdleTimeout:    15 * time.Minute,
			MetricsAddr:    "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// loadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Validation is left to the caller so each binary checks only what it uses.
func loadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// AIS_API_KEY -> ais.api_key, PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths maps config paths that arrive from the environment as a
// single string to the separator used to split them. Bounding boxes contain
// commas themselves, so boxes are separated by semicolons.
var sliceConfigPaths = map[string]string{
	"security.cors_origins": ",",
	"ais.message_types":     ",",
	"ais.bounding_boxes":    ";",
}

// processSliceFields converts separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for path, sep := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, sep)
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute config.
var envMappings = map[string]string{
	// Upstream AIS stream
	"ais_api_key":            "ais.api_key",
	"ais_stream_url":         "ais.url",
	"ais_bounding_boxes":     "ais.bounding_boxes",
	"ais_message_types":      "ais.message_types",
	"ais_keepalive_interval": "ais.keepalive_interval",
	"ais_handshake_timeout":  "ais.handshake_timeout",
	"ais_write_timeout":      "ais.write_timeout",
	"ais_forward_buffer":     "ais.forward_buffer",

	// Server
	"port":             "server.port",
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Security
	"session_timeout":     "security.session_timeout",
	"session_cookie_name": "security.cookie_name",
	"cookie_secure":       "security.cookie_secure",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"login_rate_limit":    "security.login_rate_limit",
	"cors_origins":        "security.cors_origins",

	// Database
	"database_path":      "database.path",
	"database_in_memory": "database.in_memory",

	// Weather
	"openweathermap_api_key":      "weather.api_key",
	"weather_base_url":            "weather.base_url",
	"weather_timeout":             "weather.timeout",
	"weather_cache_ttl":           "weather.cache_ttl",
	"weather_requests_per_second": "weather.requests_per_second",
	"weather_burst":               "weather.burst",

	// Tracker
	"tracked_mmsi":               "tracker.tracked_mmsi",
	"tracked_name":               "tracker.tracked_name",
	"tracker_stale_after":        "tracker.stale_after",
	"tracker_animation_duration": "tracker.animation_duration",
	"tracker_frame_rate":         "tracker.frame_rate",
	"tracker_fallback_grace":     "tracker.fallback_grace",
	"tracker_trail_capacity":     "tracker.trail_capacity",
	"home_latitude":              "tracker.home_latitude",
	"home_longitude":             "tracker.home_longitude",

	// aiswatch client
	"relay_url":              "client.relay_url",
	"client_reconnect_delay": "client.reconnect_delay",
	"client_idle_timeout":    "client.idle_timeout",
	"client_metrics_addr":    "client.metrics_addr",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - AIS_API_KEY -> ais.api_key
//   - PORT -> server.port
//   - OPENWEATHERMAP_API_KEY -> weather.api_key
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
