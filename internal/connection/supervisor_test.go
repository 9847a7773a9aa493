// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const (
	reconnectDelay = 3 * time.Second
	idleTimeout    = 15 * time.Minute
	waitTimeout    = 2 * time.Second
)

// manualTimer and manualScheduler let tests fire timers by hand.
type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return &stopper{s: s, t: t}
}

type stopper struct {
	s *manualScheduler
	t *manualTimer
}

func (st *stopper) Stop() bool {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	wasPending := !st.t.stopped && !st.t.fired
	st.t.stopped = true
	return wasPending
}

func (s *manualScheduler) pending(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if t.d == d && !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs the single pending timer with duration d.
func (s *manualScheduler) fire(t *testing.T, d time.Duration) {
	t.Helper()

	s.mu.Lock()
	var found *manualTimer
	for _, tm := range s.timers {
		if tm.d == d && !tm.stopped && !tm.fired {
			if found != nil {
				s.mu.Unlock()
				t.Fatalf("more than one pending %v timer", d)
			}
			found = tm
		}
	}
	if found == nil {
		s.mu.Unlock()
		t.Fatalf("no pending %v timer", d)
	}
	found.fired = true
	s.mu.Unlock()

	found.f()
}

type fakeConn struct {
	frames    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 8),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.frames:
		return 1, f, nil
	case <-c.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type fakeDialer struct {
	mu    sync.Mutex
	err   error
	conns []*fakeConn
	dials atomic.Int32
}

func (d *fakeDialer) Dial(context.Context) (Conn, error) {
	d.dials.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

type supervisorHarness struct {
	sup     *Supervisor
	dialer  *fakeDialer
	sched   *manualScheduler
	frames  chan []byte
	cancel  context.CancelFunc
	stopped chan error
}

func newSupervisorHarness(t *testing.T) *supervisorHarness {
	t.Helper()

	h := &supervisorHarness{
		dialer:  &fakeDialer{},
		sched:   &manualScheduler{},
		frames:  make(chan []byte, 8),
		stopped: make(chan error, 1),
	}
	h.sup = New(Config{
		ReconnectDelay: reconnectDelay,
		IdleTimeout:    idleTimeout,
		OnFrame:        func(f []byte) { h.frames <- f },
		Scheduler:      h.sched,
	}, h.dialer)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.stopped <- h.sup.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *supervisorHarness) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for h.sup.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", h.sup.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSupervisor_ConnectsAndDeliversFrames(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)

	h.dialer.last().frames <- []byte(`{"MessageType":"PositionReport"}`)
	select {
	case f := <-h.frames:
		if string(f) != `{"MessageType":"PositionReport"}` {
			t.Errorf("frame = %q", f)
		}
	case <-time.After(waitTimeout):
		t.Fatal("frame not delivered")
	}

	if st := h.sup.Status(); st.Text != TextConnected || st.Paused {
		t.Errorf("status = %+v", st)
	}
	if h.sched.pending(idleTimeout) != 1 {
		t.Error("idle timer not armed on open")
	}
}

func TestSupervisor_ReconnectsAfterUnexpectedClose(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)
	first := h.dialer.last()

	_ = first.Close()
	h.waitState(t, Disconnected)

	if h.sched.pending(reconnectDelay) != 1 {
		t.Fatal("no automatic reconnect scheduled after close")
	}
	if h.sched.pending(idleTimeout) != 0 {
		t.Error("idle timer still armed while disconnected")
	}

	h.sched.fire(t, reconnectDelay)
	h.waitState(t, Connected)

	if got := h.dialer.dials.Load(); got != 2 {
		t.Errorf("dials = %d, want 2", got)
	}
	if h.dialer.last() == first {
		t.Error("reconnect reused the old socket")
	}
}

func TestSupervisor_IdleClosesWithoutReconnect(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)
	conn := h.dialer.last()

	h.sched.fire(t, idleTimeout)

	if h.sup.State() != Disconnected {
		t.Fatalf("state = %s, want disconnected", h.sup.State())
	}
	if !conn.isClosed() {
		t.Error("socket not closed on idle")
	}
	st := h.sup.Status()
	if !st.Paused || st.Text != TextPaused {
		t.Errorf("status = %+v, want paused", st)
	}

	// Give the read loop time to observe the close; it must not reschedule.
	time.Sleep(20 * time.Millisecond)
	if n := h.sched.pending(reconnectDelay); n != 0 {
		t.Errorf("%d automatic reconnects scheduled after idle close", n)
	}
	if got := h.dialer.dials.Load(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}
}

func TestSupervisor_ManualReconnectIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)

	if h.sup.Reconnect() {
		t.Error("Reconnect while connected should be a no-op")
	}
	if got := h.dialer.dials.Load(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}

	h.sched.fire(t, idleTimeout)
	if !h.sup.Reconnect() {
		t.Fatal("Reconnect after idle pause should dial")
	}
	h.waitState(t, Connected)
	if h.sup.Status().Paused {
		t.Error("still paused after manual reconnect")
	}
	if h.sup.Reconnect() {
		t.Error("second Reconnect should be a no-op")
	}
}

func TestSupervisor_RetriesDialFailuresForever(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)
	h.dialer.setErr(errors.New("connection refused"))
	_ = h.dialer.last().Close()

	for i := 0; i < 5; i++ {
		h.waitState(t, Disconnected)
		deadline := time.Now().Add(waitTimeout)
		for h.sched.pending(reconnectDelay) != 1 {
			if time.Now().After(deadline) {
				t.Fatalf("attempt %d: no reconnect scheduled", i)
			}
			time.Sleep(time.Millisecond)
		}
		h.sched.fire(t, reconnectDelay)
	}

	h.dialer.setErr(nil)
	deadline := time.Now().Add(waitTimeout)
	for h.sched.pending(reconnectDelay) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("no reconnect scheduled")
		}
		time.Sleep(time.Millisecond)
	}
	h.sched.fire(t, reconnectDelay)
	h.waitState(t, Connected)
}

func TestSupervisor_ActivityRestartsIdleWindow(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)

	h.sup.Activity()
	h.sup.Activity()

	if n := h.sched.pending(idleTimeout); n != 1 {
		t.Fatalf("%d idle timers pending, want 1", n)
	}
	h.sched.fire(t, idleTimeout)
	if !h.sup.Status().Paused {
		t.Error("idle timer armed by activity did not pause the connection")
	}
}

func TestSupervisor_ShutdownClosesSocket(t *testing.T) {
	t.Parallel()

	h := newSupervisorHarness(t)
	h.waitState(t, Connected)
	conn := h.dialer.last()

	h.cancel()
	select {
	case err := <-h.stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("supervisor did not stop")
	}

	if !conn.isClosed() {
		t.Error("socket left open")
	}
	if h.sched.pending(reconnectDelay) != 0 || h.sched.pending(idleTimeout) != 0 {
		t.Error("timers left pending after shutdown")
	}
	if h.sup.Reconnect() {
		t.Error("Reconnect after shutdown should be a no-op")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := map[State]string{
		Disconnected: "disconnected",
		Connecting:   "connecting",
		Connected:    "connected",
		State(9):     "state(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
