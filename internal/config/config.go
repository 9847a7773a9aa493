// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package config

import (
	"time"
)

// Config holds the complete configuration for both Sailmap binaries.
//
// The relay server uses every section except Client; aiswatch uses Client,
// Tracker and Logging.
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	AIS      AISConfig      `koanf:"ais"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Database DatabaseConfig `koanf:"database"`
	Weather  WeatherConfig  `koanf:"weather"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Client   ClientConfig   `koanf:"client"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AISConfig holds the upstream AIS stream settings used by the relay.
//
// Environment Variables:
//   - AIS_API_KEY: aisstream.io API key (required by the relay server)
//   - AIS_STREAM_URL: upstream WebSocket URL (default: wss://stream.aisstream.io/v0/stream)
//   - AIS_BOUNDING_BOXES: semicolon separated boxes, each "lat1,lon1,lat2,lon2"
//   - AIS_MESSAGE_TYPES: comma separated message type allow-list
//   - AIS_KEEPALIVE_INTERVAL: upstream ping interval (default: 30s)
type AISConfig struct {
	APIKey            string        `koanf:"api_key"`
	URL               string        `koanf:"url"`
	BoundingBoxes     []string      `koanf:"bounding_boxes"`
	MessageTypes      []string      `koanf:"message_types"`
	KeepAliveInterval time.Duration `koanf:"keepalive_interval"`
	HandshakeTimeout  time.Duration `koanf:"handshake_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ForwardBuffer     int           `koanf:"forward_buffer"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds session, CORS and rate limit settings
type SecurityConfig struct {
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CookieName        string        `koanf:"cookie_name"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds BadgerDB storage settings.
// InMemory is intended for tests and throwaway deployments.
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// WeatherConfig holds OpenWeatherMap lookup settings. An empty APIKey
// disables the weather endpoint.
type WeatherConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// TrackerConfig holds live entity tracker settings shared by the relay
// (tracked vessel log flagging) and aiswatch.
type TrackerConfig struct {
	TrackedMMSI       int64         `koanf:"tracked_mmsi"`
	TrackedName       string        `koanf:"tracked_name"`
	StaleAfter        time.Duration `koanf:"stale_after"`
	AnimationDuration time.Duration `koanf:"animation_duration"`
	FrameRate         int           `koanf:"frame_rate"`
	FallbackGrace     time.Duration `koanf:"fallback_grace"`
	TrailCapacity     int           `koanf:"trail_capacity"`
	HomeLatitude      float64       `koanf:"home_latitude"`
	HomeLongitude     float64       `koanf:"home_longitude"`
}

// ClientConfig holds aiswatch connection settings.
type ClientConfig struct {
	RelayURL       string        `koanf:"relay_url"`
	ReconnectDelay time.Duration `koanf:"reconnect_delay"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	MetricsAddr    string        `koanf:"metrics_addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load loads the relay server configuration from defaults, an optional
// config file and environment variables, then validates every section.
// A missing AIS API key is a configuration error.
func Load() (*Config, error) {
	cfg, err := loadWithKoanf()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient loads configuration for aiswatch. Only the client, tracker and
// logging sections are validated; the AIS API key is never needed there.
func LoadClient() (*Config, error) {
	cfg, err := loadWithKoanf()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
