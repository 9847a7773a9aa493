// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrMissingAPIKey is returned when the relay server has no upstream credential.
var ErrMissingAPIKey = errors.New("AIS_API_KEY is required")

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the relay server configuration.
func (c *Config) Validate() error {
	if err := c.validateAIS(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateWeather(); err != nil {
		return err
	}

	if err := c.validateTracker(); err != nil {
		return err
	}

	return c.validateLogging()
}

// ValidateClient checks only the sections used by aiswatch.
func (c *Config) ValidateClient() error {
	if err := c.validateClient(); err != nil {
		return err
	}

	if err := c.validateTracker(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateAIS() error {
	if strings.TrimSpace(c.AIS.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if err := validateWebSocketURL(c.AIS.URL, "AIS_STREAM_URL"); err != nil {
		return err
	}
	if _, err := c.AIS.ParseBoundingBoxes(); err != nil {
		return err
	}
	if len(c.AIS.MessageTypes) == 0 {
		return fmt.Errorf("AIS_MESSAGE_TYPES must list at least one message type")
	}
	if c.AIS.KeepAliveInterval < time.Second {
		return fmt.Errorf("AIS_KEEPALIVE_INTERVAL must be at least 1s")
	}
	if c.AIS.ForwardBuffer < 1 {
		return fmt.Errorf("AIS_FORWARD_BUFFER must be positive")
	}
	return nil
}

// ParseBoundingBoxes converts the "lat1,lon1,lat2,lon2" entries into corner pairs.
func (a AISConfig) ParseBoundingBoxes() ([][2][2]float64, error) {
	if len(a.BoundingBoxes) == 0 {
		return nil, fmt.Errorf("AIS_BOUNDING_BOXES must contain at least one box")
	}

	boxes := make([][2][2]float64, 0, len(a.BoundingBoxes))
	for _, raw := range a.BoundingBoxes {
		parts := strings.Split(raw, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("bounding box %q must have 4 comma separated values", raw)
		}

		var vals [4]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("bounding box %q: %w", raw, err)
			}
			vals[i] = v
		}

		for _, lat := range []float64{vals[0], vals[2]} {
			if lat < -90 || lat > 90 {
				return nil, fmt.Errorf("bounding box %q: latitude %v out of range", raw, lat)
			}
		}
		for _, lon := range []float64{vals[1], vals[3]} {
			if lon < -180 || lon > 180 {
				return nil, fmt.Errorf("bounding box %q: longitude %v out of range", raw, lon)
			}
		}

		boxes = append(boxes, [2][2]float64{{vals[0], vals[1]}, {vals[2], vals[3]}})
	}
	return boxes, nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.SessionTimeout < time.Minute {
		return fmt.Errorf("SESSION_TIMEOUT must be at least 1m")
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
		if c.Security.LoginRateLimit < 1 {
			return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
		}
	}
	return c.validateCORS()
}

// validateCORS rejects wildcard CORS in production, where session cookies are in use.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production; list the UI origins explicitly")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateDatabase() error {
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required unless DATABASE_IN_MEMORY=true")
	}
	return nil
}

// validateWeather only checks the lookup settings when an API key is configured.
func (c *Config) validateWeather() error {
	if c.Weather.APIKey == "" {
		return nil
	}
	if err := validateHTTPURL(c.Weather.BaseURL, "WEATHER_BASE_URL"); err != nil {
		return err
	}
	if c.Weather.RequestsPerSecond <= 0 {
		return fmt.Errorf("WEATHER_REQUESTS_PER_SECOND must be positive")
	}
	if c.Weather.Burst < 1 {
		return fmt.Errorf("WEATHER_BURST must be positive")
	}
	return nil
}

func (c *Config) validateTracker() error {
	t := c.Tracker
	if t.TrackedMMSI <= 0 {
		return fmt.Errorf("TRACKED_MMSI must be positive")
	}
	if t.StaleAfter <= 0 {
		return fmt.Errorf("TRACKER_STALE_AFTER must be positive")
	}
	if t.AnimationDuration <= 0 {
		return fmt.Errorf("TRACKER_ANIMATION_DURATION must be positive")
	}
	if t.FrameRate < 1 || t.FrameRate > 240 {
		return fmt.Errorf("TRACKER_FRAME_RATE must be between 1 and 240")
	}
	if t.TrailCapacity < 2 {
		return fmt.Errorf("TRACKER_TRAIL_CAPACITY must be at least 2")
	}
	if t.HomeLatitude < -90 || t.HomeLatitude > 90 {
		return fmt.Errorf("HOME_LATITUDE must be between -90 and 90")
	}
	if t.HomeLongitude < -180 || t.HomeLongitude > 180 {
		return fmt.Errorf("HOME_LONGITUDE must be between -180 and 180")
	}
	return nil
}

func (c *Config) validateClient() error {
	if err := validateWebSocketURL(c.Client.RelayURL, "RELAY_URL"); err != nil {
		return err
	}
	if c.Client.ReconnectDelay <= 0 {
		return fmt.Errorf("CLIENT_RECONNECT_DELAY must be positive")
	}
	if c.Client.IdleTimeout <= 0 {
		return fmt.Errorf("CLIENT_IDLE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
