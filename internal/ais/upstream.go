// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package ais

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/metrics"
)

// ErrUpstreamClosed is returned by Err when the client was closed by its owner.
var ErrUpstreamClosed = errors.New("ais: upstream closed")

// UpstreamConfig configures a single upstream connection.
type UpstreamConfig struct {
	URL              string
	Subscription     Subscription
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	FrameBuffer      int

	// Dialer overrides the default dialer (tests, proxies).
	Dialer *websocket.Dialer
}

// UpstreamClient owns one outbound connection to the AIS stream.
//
// It sends the subscription once after the handshake and then delivers every
// frame, unparsed, on Frames. It never reconnects: when the connection ends
// for any reason Done is closed exactly once and Err reports why.
//
// Thread Safety: Ping and Close may be called from any goroutine.
type UpstreamClient struct {
	cfg    UpstreamConfig
	conn   *websocket.Conn
	frames chan []byte
	done   chan struct{}

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
	wg        sync.WaitGroup
}

// DialUpstream connects to the stream and sends the subscription message.
//
// The returned client is already reading. A failure to send the subscription
// closes the connection and is returned as an error.
func DialUpstream(ctx context.Context, cfg UpstreamConfig) (*UpstreamClient, error) {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = 256
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			Proxy:            websocket.DefaultDialer.Proxy,
		}
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		metrics.RecordUpstreamError("dial")
		if resp != nil {
			return nil, fmt.Errorf("upstream dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("upstream dial: %w", err)
	}

	payload, err := json.Marshal(cfg.Subscription)
	if err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("encode subscription: %w", err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout)); err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		metrics.RecordUpstreamError("subscribe")
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("send subscription: %w", err)
	}

	c := &UpstreamClient{
		cfg:    cfg,
		conn:   conn,
		frames: make(chan []byte, cfg.FrameBuffer),
		done:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.readLoop()

	logging.Debug().
		Int("bounding_boxes", len(cfg.Subscription.BoundingBoxes)).
		Strs("message_types", cfg.Subscription.FilterMessageTypes).
		Msg("upstream AIS stream subscribed")

	return c, nil
}

// readLoop forwards frames until the connection fails or the client is closed.
func (c *UpstreamClient) readLoop() {
	defer c.wg.Done()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// closed by owner; read error is the consequence
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					metrics.RecordUpstreamError("read")
				}
			}
			c.shutdown(err)
			return
		}

		select {
		case c.frames <- message:
		case <-c.done:
			return
		}
	}
}

// Frames delivers raw upstream frames in arrival order. It is never closed;
// watch Done to learn when no more frames will arrive.
func (c *UpstreamClient) Frames() <-chan []byte {
	return c.frames
}

// Done is closed exactly once when the connection has ended.
func (c *UpstreamClient) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, or nil while it is open.
func (c *UpstreamClient) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Ping sends a WebSocket ping control frame. It fails once the client is done.
func (c *UpstreamClient) Ping() error {
	select {
	case <-c.done:
		return ErrUpstreamClosed
	default:
	}

	if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		metrics.RecordUpstreamError("ping")
		return fmt.Errorf("upstream ping: %w", err)
	}
	return nil
}

// Close ends the connection and waits for the reader to exit. Safe to call
// more than once and after the connection has already failed.
func (c *UpstreamClient) Close() error {
	c.shutdown(ErrUpstreamClosed)
	c.wg.Wait()
	return nil
}

// shutdown records the first cause, signals Done and releases the socket.
func (c *UpstreamClient) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = cause
		c.errMu.Unlock()

		close(c.done)

		//nolint:errcheck // best effort; the peer may already be gone
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = c.conn.Close() //nolint:errcheck // nothing useful to do with this error
	})
}
