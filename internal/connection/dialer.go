// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// maxFrameSize bounds a single relayed frame.
const maxFrameSize = 1 << 20

// WebSocketDialer dials the relay's WebSocket endpoint.
type WebSocketDialer struct {
	URL              string
	HandshakeTimeout time.Duration
}

// Dial opens a WebSocket to the relay.
func (d WebSocketDialer) Dial(ctx context.Context) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		Proxy:            websocket.DefaultDialer.Proxy,
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay %s (HTTP %d): %w", d.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial relay %s: %w", d.URL, err)
	}
	conn.SetReadLimit(maxFrameSize)
	return conn, nil
}
