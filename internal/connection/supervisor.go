// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package connection keeps the client's socket to the relay open.
//
// The Supervisor is a three-state machine (Disconnected, Connecting,
// Connected). Unexpected closes are retried forever on a fixed delay. An
// idle timeout closes the socket on purpose and suppresses the retry until
// the user reconnects by hand.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

// State is the supervisor's connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Human-readable status texts.
const (
	TextDisconnected = "Disconnected"
	TextConnecting   = "Connecting to AIS relay..."
	TextConnected    = "Connected - live AIS data"
	TextReconnecting = "Disconnected - reconnecting"
	TextPaused       = "Paused due to inactivity - reconnect to resume"
	TextStopped      = "Stopped"
)

// Status is what the user sees about the connection.
type Status struct {
	State  State  `json:"-"`
	Name   string `json:"state"`
	Text   string `json:"text"`
	Paused bool   `json:"paused"`
}

// Conn is an open socket to the relay.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a socket to the relay.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. Tests substitute a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config configures a Supervisor.
type Config struct {
	ReconnectDelay time.Duration
	IdleTimeout    time.Duration

	// OnFrame receives every inbound frame on the read goroutine.
	OnFrame func([]byte)

	// OnStatus is called after every state change. It must not block.
	OnStatus func(Status)

	// Scheduler defaults to the wall clock.
	Scheduler Scheduler
}

func (c *Config) applyDefaults() {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 3 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 15 * time.Minute
	}
	if c.OnFrame == nil {
		c.OnFrame = func([]byte) {}
	}
	if c.Scheduler == nil {
		c.Scheduler = realScheduler{}
	}
}

// Supervisor owns the client socket's lifecycle.
//
// Every connection attempt gets a new generation number. Callbacks from an
// older generation (a read loop ending after an idle close, a dial that
// finishes after shutdown) see a stale generation and do nothing.
type Supervisor struct {
	cfg    Config
	dialer Dialer

	mu        sync.Mutex
	ctx       context.Context
	state     State
	text      string
	paused    bool
	stopped   bool
	gen       uint64
	conn      Conn
	reconnect Timer
	idle      Timer
}

// New creates a Supervisor. Nothing is dialed until RunWithContext.
func New(cfg Config, dialer Dialer) *Supervisor {
	cfg.applyDefaults()
	return &Supervisor{
		cfg:    cfg,
		dialer: dialer,
		state:  Disconnected,
		text:   TextDisconnected,
	}
}

// RunWithContext connects and keeps the connection supervised until ctx is
// cancelled, then closes the socket and cancels all timers.
func (s *Supervisor) RunWithContext(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return errors.New("connection supervisor already running")
	}
	s.ctx = ctx
	s.stopped = false
	s.mu.Unlock()

	s.connect("initial")
	<-ctx.Done()

	s.mu.Lock()
	s.stopped = true
	s.ctx = nil
	s.gen++
	stopTimer(s.reconnect)
	stopTimer(s.idle)
	s.reconnect, s.idle = nil, nil
	conn := s.conn
	s.conn = nil
	st := s.setStateLocked(Disconnected, TextStopped)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close() //nolint:errcheck // shutting down
	}
	s.notify(st)
	return ctx.Err()
}

// Reconnect is the manual reconnect affordance. It is a no-op while a
// connection is open or being opened.
func (s *Supervisor) Reconnect() bool {
	return s.connect("manual")
}

// Activity records user input and restarts the idle window.
func (s *Supervisor) Activity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx == nil {
		return
	}
	s.armIdleLocked()
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current user-facing status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// String implements fmt.Stringer for supervisor logs.
func (s *Supervisor) String() string {
	return "connection-supervisor"
}

// connect moves Disconnected -> Connecting and dials in the background.
func (s *Supervisor) connect(trigger string) bool {
	s.mu.Lock()
	if s.stopped || s.ctx == nil || s.state != Disconnected {
		s.mu.Unlock()
		return false
	}
	if trigger == "automatic" && s.paused {
		s.mu.Unlock()
		return false
	}

	stopTimer(s.reconnect)
	s.reconnect = nil
	s.paused = false
	s.gen++
	gen := s.gen
	ctx := s.ctx
	st := s.setStateLocked(Connecting, TextConnecting)
	s.mu.Unlock()

	if trigger != "initial" {
		metrics.ConnectionReconnects.WithLabelValues(trigger).Inc()
	}
	logging.Info().Str("trigger", trigger).Msg("connecting to relay")
	s.notify(st)

	go s.dial(ctx, gen)
	return true
}

func (s *Supervisor) dial(ctx context.Context, gen uint64) {
	conn, err := s.dialer.Dial(ctx)

	s.mu.Lock()
	if gen != s.gen || s.stopped {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close() //nolint:errcheck // superseded attempt
		}
		return
	}

	if err != nil {
		st := s.setStateLocked(Disconnected, TextReconnecting)
		s.scheduleReconnectLocked()
		s.mu.Unlock()

		logging.Warn().Err(err).Dur("retry_in", s.cfg.ReconnectDelay).Msg("relay connection failed")
		s.notify(st)
		return
	}

	s.conn = conn
	s.armIdleLocked()
	st := s.setStateLocked(Connected, TextConnected)
	s.mu.Unlock()

	logging.Info().Msg("connected to relay")
	s.notify(st)

	go s.read(conn, gen)
}

// read delivers frames until the socket fails.
func (s *Supervisor) read(conn Conn, gen uint64) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.closed(gen, err)
			return
		}
		s.cfg.OnFrame(msg)
	}
}

// closed handles a socket close that the supervisor did not initiate.
func (s *Supervisor) closed(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen || s.stopped {
		s.mu.Unlock()
		return
	}

	conn := s.conn
	s.conn = nil
	stopTimer(s.idle)
	s.idle = nil
	st := s.setStateLocked(Disconnected, TextReconnecting)
	s.scheduleReconnectLocked()
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close() //nolint:errcheck // already failed
	}
	logging.Warn().Err(err).Dur("retry_in", s.cfg.ReconnectDelay).Msg("relay connection closed")
	s.notify(st)
}

// idleExpired force-closes an open connection and pauses reconnects.
func (s *Supervisor) idleExpired(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.stopped || s.state != Connected {
		s.mu.Unlock()
		return
	}

	s.gen++
	s.paused = true
	s.idle = nil
	stopTimer(s.reconnect)
	s.reconnect = nil
	conn := s.conn
	s.conn = nil
	st := s.setStateLocked(Disconnected, TextPaused)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close() //nolint:errcheck // intentional close
	}
	logging.Info().Dur("idle_timeout", s.cfg.IdleTimeout).Msg("relay connection paused due to inactivity")
	s.notify(st)
}

func (s *Supervisor) scheduleReconnectLocked() {
	stopTimer(s.reconnect)
	s.reconnect = s.cfg.Scheduler.AfterFunc(s.cfg.ReconnectDelay, func() {
		s.connect("automatic")
	})
}

func (s *Supervisor) armIdleLocked() {
	stopTimer(s.idle)
	gen := s.gen
	s.idle = s.cfg.Scheduler.AfterFunc(s.cfg.IdleTimeout, func() {
		s.idleExpired(gen)
	})
}

func (s *Supervisor) setStateLocked(state State, text string) Status {
	s.state = state
	s.text = text
	metrics.ConnectionState.Set(float64(state))
	return s.statusLocked()
}

func (s *Supervisor) statusLocked() Status {
	return Status{
		State:  s.state,
		Name:   s.state.String(),
		Text:   s.text,
		Paused: s.paused,
	}
}

func (s *Supervisor) notify(st Status) {
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(st)
	}
}

func stopTimer(t Timer) {
	if t != nil {
		t.Stop()
	}
}
