// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sailmap/internal/ais"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

// EndReason describes which side ended a session.
type EndReason string

const (
	EndClientClosed   EndReason = "client_closed"
	EndClientError    EndReason = "client_write_failed"
	EndUpstreamClosed EndReason = "upstream_closed"
	EndKeepAlive      EndReason = "keepalive_failed"
	EndShutdown       EndReason = "shutdown"
)

// Session pairs one client socket with one upstream connection.
//
// Run owns both handles and the keep-alive ticker; whichever side ends first,
// teardown releases all three exactly once.
type Session struct {
	id       string
	client   *websocket.Conn
	upstream Upstream
	cfg      Config

	keepAlive       *time.Ticker
	keepAliveActive atomic.Bool
	teardownOnce    sync.Once
	clientDone      chan struct{}
	openedAt        time.Time
}

// NewSession creates a session for an already upgraded client connection
// and an already subscribed upstream.
func NewSession(id string, client *websocket.Conn, upstream Upstream, cfg Config) *Session {
	cfg.applyDefaults()
	return &Session{
		id:         id,
		client:     client,
		upstream:   upstream,
		cfg:        cfg,
		clientDone: make(chan struct{}),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// KeepAliveActive reports whether the upstream keep-alive ticker is running.
func (s *Session) KeepAliveActive() bool {
	return s.keepAliveActive.Load()
}

// Run forwards upstream frames to the client until either side closes or
// ctx is cancelled. It always returns with both sockets closed and the
// keep-alive stopped.
func (s *Session) Run(ctx context.Context) EndReason {
	log := logging.Ctx(ctx)
	s.openedAt = time.Now()
	metrics.RecordRelaySessionOpened()

	s.keepAlive = time.NewTicker(s.cfg.KeepAliveInterval)
	s.keepAliveActive.Store(true)

	clientErr := make(chan error, 1)
	go s.readClient(clientErr)

	reason, closeCode, closeText := s.forward(ctx, log, clientErr)
	if pending := len(s.upstream.Frames()); pending > 0 {
		metrics.RecordRelayFramesLost(string(reason), pending)
		log.Debug().Int("frames", pending).Str("reason", string(reason)).Msg("buffered frames not forwarded")
	}
	s.teardown(closeCode, closeText)

	lifetime := time.Since(s.openedAt)
	metrics.RecordRelaySessionClosed(lifetime)
	log.Info().
		Str("reason", string(reason)).
		Dur("lifetime", lifetime).
		Msg("relay session closed")

	return reason
}

// forward is the session's event loop. It returns the end reason together
// with the close frame to send to the client.
func (s *Session) forward(ctx context.Context, log *zerolog.Logger, clientErr <-chan error) (EndReason, int, string) {
	for {
		select {
		case <-ctx.Done():
			return EndShutdown, websocket.CloseGoingAway, ReasonShuttingDown

		case err := <-clientErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Msg("client socket error")
			} else {
				log.Info().Msg("client disconnected from relay")
			}
			return EndClientClosed, websocket.CloseNormalClosure, ""

		case <-s.upstream.Done():
			// Frames read before the upstream ended still belong to the client.
			if err := s.drain(log); err != nil {
				log.Warn().Err(err).Msg("failed to forward buffered frame to client")
				return EndClientError, websocket.CloseInternalServerErr, ""
			}
			err := s.upstream.Err()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info().Err(err).Msg("disconnected from AIS upstream")
			} else {
				log.Error().Err(err).Msg("AIS upstream error")
			}
			return EndUpstreamClosed, websocket.CloseInternalServerErr, ReasonUpstreamClosed

		case <-s.keepAlive.C:
			if err := s.upstream.Ping(); err != nil {
				log.Error().Err(err).Msg("AIS upstream keep-alive failed")
				return EndKeepAlive, websocket.CloseInternalServerErr, ReasonUpstreamClosed
			}

		case frame := <-s.upstream.Frames():
			if err := s.forwardFrame(log, frame); err != nil {
				log.Warn().Err(err).Msg("failed to forward frame to client")
				return EndClientError, websocket.CloseInternalServerErr, ""
			}
		}
	}
}

// drain forwards every frame already buffered by the upstream without
// waiting for more.
func (s *Session) drain(log *zerolog.Logger) error {
	for {
		select {
		case frame := <-s.upstream.Frames():
			if err := s.forwardFrame(log, frame); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// forwardFrame writes one frame to the client. A failed write counts the
// frame as lost.
func (s *Session) forwardFrame(log *zerolog.Logger, frame []byte) error {
	s.logFrame(log, frame)
	if err := s.writeClient(frame); err != nil {
		metrics.RecordRelayFramesLost(string(EndClientError), 1)
		return err
	}
	metrics.RelayFramesForwarded.Inc()
	return nil
}

// writeClient writes one frame verbatim as a text message.
func (s *Session) writeClient(frame []byte) error {
	if err := s.client.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return s.client.WriteMessage(websocket.TextMessage, frame)
}

// readClient discards inbound client frames; the relay is one-way. It
// reports the first read error, which is how a client close is observed.
func (s *Session) readClient(errc chan<- error) {
	defer close(s.clientDone)

	s.client.SetReadLimit(s.cfg.MaxClientMessageSize)
	for {
		if _, _, err := s.client.ReadMessage(); err != nil {
			errc <- err
			return
		}
		metrics.RelayClientFramesDropped.Inc()
	}
}

// teardown stops the keep-alive, closes the upstream and closes the client.
func (s *Session) teardown(code int, text string) {
	s.teardownOnce.Do(func() {
		s.keepAlive.Stop()
		s.keepAliveActive.Store(false)

		if err := s.upstream.Close(); err != nil && !errors.Is(err, ais.ErrUpstreamClosed) {
			logging.Warn().Err(err).Str("session_id", s.id).Msg("failed to close AIS upstream")
		}

		//nolint:errcheck // best effort; the client may already be gone
		_ = s.client.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(time.Second),
		)
		_ = s.client.Close() //nolint:errcheck // nothing useful to do with this error

		<-s.clientDone
	})
}

// logFrame logs message type and vessel identity of position reports at
// debug level. The frame itself is never modified.
func (s *Session) logFrame(log *zerolog.Logger, frame []byte) {
	if log.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}

	report, err := ais.DecodePositionReport(frame, time.Now())
	if err != nil {
		return
	}

	log.Debug().
		Str("message_type", report.MessageType).
		Int64("mmsi", report.VesselID).
		Bool("tracked", report.VesselID == s.cfg.TrackedVesselID).
		Msg("forwarding position report")
}
