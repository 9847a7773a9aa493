// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/sailmap/internal/logging"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// FrameRate is the number of animation ticks per second.
	FrameRate int

	// FallbackGrace is the delay, from the first start, before the fallback
	// check runs.
	FallbackGrace time.Duration

	// FrameBuffer is the capacity of the inbound frame queue.
	FrameBuffer int
}

func (c *RunnerConfig) applyDefaults() {
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}
	if c.FallbackGrace <= 0 {
		c.FallbackGrace = 30 * time.Second
	}
	if c.FrameBuffer <= 0 {
		c.FrameBuffer = 1024
	}
}

type command struct {
	fn   func(*Tracker)
	done chan struct{}
}

// Runner is the single goroutine that owns a Tracker. Frames, animation
// ticks, the fallback timer and user commands are all serialized through
// RunWithContext, so the tracker itself needs no locking.
type Runner struct {
	tracker  *Tracker
	cfg      RunnerConfig
	frames   chan []byte
	commands chan command
	running  chan struct{}

	// fallbackAt survives supervisor restarts so the grace period is
	// measured from the first start only.
	fallbackAt time.Time
}

// NewRunner creates a runner for t.
func NewRunner(t *Tracker, cfg RunnerConfig) *Runner {
	cfg.applyDefaults()
	return &Runner{
		tracker:  t,
		cfg:      cfg,
		frames:   make(chan []byte, cfg.FrameBuffer),
		commands: make(chan command),
		running:  make(chan struct{}, 1),
	}
}

// Submit queues a raw frame. It blocks while the queue is full.
func (r *Runner) Submit(ctx context.Context, frame []byte) error {
	select {
	case r.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the runner goroutine and waits for it to finish. It blocks
// until the runner picks the command up or ctx is done.
func (r *Runner) Do(ctx context.Context, fn func(*Tracker)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWithContext processes frames, ticks and commands until ctx is cancelled.
func (r *Runner) RunWithContext(ctx context.Context) error {
	select {
	case r.running <- struct{}{}:
		defer func() { <-r.running }()
	default:
		return errors.New("tracker runner already running")
	}

	if r.fallbackAt.IsZero() {
		r.fallbackAt = r.tracker.clock.Now().Add(r.cfg.FallbackGrace)
	}

	var fallback <-chan time.Time
	if !r.tracker.fallbackChecked() {
		wait := r.fallbackAt.Sub(r.tracker.clock.Now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()
		fallback = timer.C
	}

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.FrameRate))
	defer ticker.Stop()

	log := logging.WithComponent("tracker")
	log.Info().
		Int("frame_rate", r.cfg.FrameRate).
		Dur("fallback_grace", r.cfg.FallbackGrace).
		Msg("tracker runner started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame := <-r.frames:
			if err := r.tracker.HandleFrame(frame); err != nil {
				log.Debug().Err(err).Int("bytes", len(frame)).Msg("dropped malformed frame")
			}

		case <-ticker.C:
			r.tracker.Tick()

		case <-fallback:
			fallback = nil
			r.tracker.CheckFallback()

		case cmd := <-r.commands:
			cmd.fn(r.tracker)
			close(cmd.done)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (r *Runner) String() string {
	return "tracker-runner"
}
