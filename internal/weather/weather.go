// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package weather looks up current conditions from OpenWeatherMap.
//
// Lookups go through a rate limiter, a circuit breaker and a short TTL cache
// keyed by coordinates rounded to two decimals (about 1 km), so a map that
// pans around one harbour does not spend the upstream quota.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sailmap/internal/cache"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

const breakerName = "openweathermap"

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("weather: lookups disabled")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("weather: upstream unavailable")
)

// Conditions are the current conditions at a point.
type Conditions struct {
	Description string  `json:"description"`
	TempC       float64 `json:"tempC"`
	WindSpeed   float64 `json:"windSpeed"`
	WindDeg     float64 `json:"windDeg"`
}

// Config configures a Client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client fetches conditions from OpenWeatherMap.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[Conditions]
	cache   *cache.Cache[Conditions]
}

// NewClient creates a weather client. Close releases the cache sweeper.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[Conditions](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// Neither a bad request nor a caller that gave up says
				// anything about upstream health.
				var se *StatusError
				var gone *callerGoneError
				return err == nil ||
					errors.As(err, &gone) ||
					(errors.As(err, &se) && se.Code < 500 && se.Code != http.StatusTooManyRequests)
			},
			OnStateChange: onStateChange,
		}),
		cache: cache.New[Conditions]("weather", cfg.CacheTTL),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Close stops the cache sweeper.
func (c *Client) Close() {
	c.cache.Close()
}

// StatusError is a non-200 reply from the upstream API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather: upstream returned HTTP %d", e.Code)
}

// callerGoneError marks a lookup that failed because the caller's context
// ended first. It unwraps to the transport error, which in turn matches
// context.Canceled or context.DeadlineExceeded.
type callerGoneError struct {
	err error
}

func (e *callerGoneError) Error() string { return e.err.Error() }

func (e *callerGoneError) Unwrap() error { return e.err }

// Conditions returns the current conditions at lat, lon.
func (c *Client) Conditions(ctx context.Context, lat, lon float64) (Conditions, error) {
	if !c.Enabled() {
		return Conditions{}, ErrDisabled
	}

	key := cacheKey(lat, lon)
	if cond, ok := c.cache.Get(key); ok {
		return cond, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Conditions{}, fmt.Errorf("weather rate limit: %w", err)
	}

	cond, err := c.breaker.Execute(func() (Conditions, error) {
		cond, err := c.fetch(ctx, lat, lon)
		if err != nil && ctx.Err() != nil {
			return cond, &callerGoneError{err: err}
		}
		return cond, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return Conditions{}, ErrUnavailable
		}
		var gone *callerGoneError
		if errors.As(err, &gone) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "canceled").Inc()
			return Conditions{}, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return Conditions{}, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	c.cache.Set(key, cond)
	return cond, nil
}

// owmResponse is the subset of the current weather reply we use.
type owmResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/data/2.5/weather?"+q.Encode(), http.NoBody)
	if err != nil {
		return Conditions{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Ctx(ctx).Warn().Int("status", resp.StatusCode).Msg("weather lookup failed")
		return Conditions{}, &StatusError{Code: resp.StatusCode}
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}

	cond := Conditions{
		TempC:     body.Main.Temp,
		WindSpeed: body.Wind.Speed,
		WindDeg:   body.Wind.Deg,
	}
	if len(body.Weather) > 0 {
		cond.Description = body.Weather[0].Description
	}
	return cond, nil
}

func cacheKey(lat, lon float64) string {
	return cache.GenerateKey("conditions", [2]float64{
		math.Round(lat*100) / 100,
		math.Round(lon*100) / 100,
	})
}

func onStateChange(name string, from, to gobreaker.State) {
	logging.Info().
		Str("breaker", name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state transition")

	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
	metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
