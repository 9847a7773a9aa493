// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package relay pairs each inbound browser WebSocket with its own upstream
// AIS stream connection and forwards upstream frames to the browser, one way,
// unmodified.
//
// Every session owns exactly two sockets and one keep-alive ticker and
// releases all three together. The relay never reconnects; a client that
// loses its session is expected to connect again.
package relay

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

// Close reasons sent to browsers when no session can be established.
const (
	ReasonNotConfigured       = "AIS upstream not configured"
	ReasonUpstreamUnavailable = "upstream unavailable"
	ReasonShuttingDown        = "relay shutting down"
	ReasonUpstreamClosed      = "upstream closed"
)

// ErrAlreadyRunning is returned when RunWithContext is called twice concurrently.
var ErrAlreadyRunning = errors.New("relay: already running")

// Upstream is the session's view of one upstream AIS connection.
// *ais.UpstreamClient satisfies it.
type Upstream interface {
	Frames() <-chan []byte
	Done() <-chan struct{}
	Err() error
	Ping() error
	Close() error
}

// Dialer opens one upstream connection for one session.
type Dialer func(ctx context.Context) (Upstream, error)

// NewUpstreamDialer returns a Dialer backed by ais.DialUpstream.
func NewUpstreamDialer(cfg ais.UpstreamConfig) Dialer {
	return func(ctx context.Context) (Upstream, error) {
		client, err := ais.DialUpstream(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Config holds relay settings.
type Config struct {
	// APIKey is only checked for presence; an empty key rejects every connection.
	APIKey            string
	KeepAliveInterval time.Duration
	WriteTimeout      time.Duration
	HandshakeTimeout  time.Duration
	// MaxClientMessageSize bounds inbound client frames, which are read and discarded.
	MaxClientMessageSize int64
	// AllowedOrigins lists browser origins; "*" allows any. Requests without
	// an Origin header (non-browser clients) are always allowed.
	AllowedOrigins []string
	// TrackedVesselID is flagged in debug logs of forwarded position reports.
	TrackedVesselID int64
}

func (c *Config) applyDefaults() {
	if c.KeepAliveInterval <= 0 {
		c.KeepAliveInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.MaxClientMessageSize <= 0 {
		c.MaxClientMessageSize = 64 * 1024
	}
}

// Relay accepts inbound WebSocket connections and runs one Session per connection.
//
// Sessions are only accepted while RunWithContext is running; cancelling its
// context tears every session down and waits for them to finish.
type Relay struct {
	cfg      Config
	dial     Dialer
	upgrader websocket.Upgrader

	mu       sync.Mutex
	baseCtx  context.Context
	sessions sync.WaitGroup
	active   atomic.Int64
}

// New creates a relay. It accepts connections once RunWithContext is called.
func New(cfg Config, dial Dialer) *Relay {
	cfg.applyDefaults()

	r := &Relay{cfg: cfg, dial: dial}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin:      r.checkOrigin,
	}
	return r
}

// checkOrigin allows non-browser clients and configured browser origins.
func (r *Relay) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range r.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("relay connection rejected from unauthorized origin")
	return false
}

// ServeHTTP upgrades the request and runs a session until either side closes.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		logging.Ctx(req.Context()).Warn().Err(err).Msg("relay upgrade failed")
		return
	}

	baseCtx, ok := r.acquire()
	if !ok {
		metrics.RecordRelayRejected("rejected_shutdown")
		reject(conn, websocket.CloseTryAgainLater, ReasonShuttingDown, r.cfg.WriteTimeout)
		return
	}
	defer r.sessions.Done()

	if r.cfg.APIKey == "" {
		metrics.RecordRelayRejected("rejected_config")
		logging.Error().Msg("relay connection rejected: AIS API key is not configured")
		reject(conn, websocket.CloseInternalServerErr, ReasonNotConfigured, r.cfg.WriteTimeout)
		return
	}

	sessionID := uuid.New().String()
	ctx := logging.ContextWithSessionID(baseCtx, sessionID)
	log := logging.Ctx(ctx)
	log.Info().Str("remote_addr", req.RemoteAddr).Msg("client connected to relay")

	upstream, err := r.dial(ctx)
	if err != nil {
		metrics.RecordRelayRejected("upstream_unavailable")
		log.Error().Err(err).Msg("failed to connect to AIS upstream")
		reject(conn, websocket.CloseInternalServerErr, ReasonUpstreamUnavailable, r.cfg.WriteTimeout)
		return
	}

	session := NewSession(sessionID, conn, upstream, r.cfg)

	r.active.Add(1)
	defer r.active.Add(-1)

	session.Run(ctx)
}

// acquire registers a session slot if the relay is running.
func (r *Relay) acquire() (context.Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.baseCtx == nil {
		return nil, false
	}
	r.sessions.Add(1)
	return r.baseCtx, true
}

// ActiveSessions returns the number of sessions currently forwarding frames.
func (r *Relay) ActiveSessions() int {
	return int(r.active.Load())
}

// RunWithContext accepts sessions until ctx is cancelled, then closes every
// open session and waits for them to finish.
func (r *Relay) RunWithContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.baseCtx != nil {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.baseCtx = runCtx
	r.mu.Unlock()

	logging.Info().
		Dur("keepalive_interval", r.cfg.KeepAliveInterval).
		Bool("upstream_configured", r.cfg.APIKey != "").
		Msg("relay accepting connections")

	<-ctx.Done()

	r.mu.Lock()
	r.baseCtx = nil
	r.mu.Unlock()

	cancel()
	r.sessions.Wait()

	logging.Info().Msg("relay stopped")
	return ctx.Err()
}

// String returns the service name for suture logging.
func (r *Relay) String() string {
	return "relay"
}

// reject sends a close frame with the given code and reason and drops the connection.
func reject(conn *websocket.Conn, code int, reason string, timeout time.Duration) {
	//nolint:errcheck // best effort; the client may already be gone
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(timeout),
	)
	_ = conn.Close() //nolint:errcheck // nothing useful to do with this error
}
