// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/sailmap/internal/connection"
	"github.com/tomtom215/sailmap/internal/logging"
	"github.com/tomtom215/sailmap/internal/tracker"
)

// commandTimeout bounds how long a console command waits for the tracker.
const commandTimeout = 2 * time.Second

// linkControl is the part of the connection supervisor the console drives.
type linkControl interface {
	Reconnect() bool
	Activity()
	Status() connection.Status
}

// trackerDoer runs a function on the tracker's owning goroutine.
type trackerDoer interface {
	Do(ctx context.Context, fn func(*tracker.Tracker)) error
}

// console reads one command per line. Every line, even an empty one,
// counts as user activity for the idle timeout.
type console struct {
	link    linkControl
	tracker trackerDoer
	out     io.Writer
}

const consoleHelp = `commands:
  r  reconnect
  t  toggle tracked vessel trail
  s  show status
  h  help
  q  quit`

// run processes lines from in until EOF, "q", or ctx is done. It returns
// true when the user asked to quit.
func (c *console) run(ctx context.Context, in io.Reader) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return false
		}
		c.link.Activity()
		if c.handle(ctx, strings.TrimSpace(scanner.Text())) {
			return true
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Warn().Err(err).Msg("console input closed")
	}
	return false
}

func (c *console) handle(ctx context.Context, line string) (quit bool) {
	switch strings.ToLower(line) {
	case "":
	case "r", "reconnect":
		if c.link.Reconnect() {
			c.printf("reconnecting...\n")
		} else {
			c.printf("already %s\n", c.link.Status().Name)
		}
	case "t", "trail":
		var result tracker.TrailResult
		if err := c.do(ctx, func(t *tracker.Tracker) { result = t.ToggleTrail() }); err != nil {
			c.printf("tracker busy: %v\n", err)
			return false
		}
		c.printf("trail: %s\n", result)
	case "s", "status":
		var st tracker.Status
		if err := c.do(ctx, func(t *tracker.Tracker) { st = t.Monitor().Status() }); err != nil {
			c.printf("tracker busy: %v\n", err)
			return false
		}
		link := c.link.Status()
		c.printf("connection: %s\n", link.Text)
		c.printf("%s (%d): %s\n", st.Name, st.VesselID, st.Text)
		if !st.LastSeen.IsZero() {
			c.printf("  last seen %s at %.5f, %.5f\n",
				st.LastSeen.Format(time.RFC3339), st.LastPosition.Lat, st.LastPosition.Lon)
		}
	case "h", "help", "?":
		c.printf("%s\n", consoleHelp)
	case "q", "quit", "exit":
		return true
	default:
		c.printf("unknown command %q (h for help)\n", line)
	}
	return false
}

func (c *console) do(ctx context.Context, fn func(*tracker.Tracker)) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return c.tracker.Do(ctx, fn)
}

func (c *console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...) //nolint:errcheck // terminal output
}
