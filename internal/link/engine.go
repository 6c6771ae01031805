// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package link owns the WebSocket connection to the board server: it runs the
// handshake and then the request/response or push loop of the negotiated mode.
//
// Phases:
//
//	Disconnected -> Connecting -> HandshakeSent -> Established -> {SyncLoop | AsyncLoop | MasterLoop}
//
// and back to Disconnected from any phase. Socket activity reaches the engine
// as Events, all consumed by one transition function on the goroutine that
// calls Connect and Run.
package link

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/paddle_client/internal/haptics"
	"github.com/relabs-tech/paddle_client/internal/paddle"
	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// CoordinateSource provides the latest paddle coordinate.
type CoordinateSource interface {
	Coordinate() paddle.Coordinate
}

// Options tunes the transport and the loop timing.
type Options struct {
	// DialTimeout bounds the TCP dial and the WebSocket opening handshake.
	DialTimeout time.Duration
	// MasterInterval is the push period in ClientMaster mode.
	MasterInterval time.Duration
	// ResponseTimeout, when non-zero, ends a slave loop that waits longer
	// than this for the next pull.
	ResponseTimeout time.Duration
	// PingInterval, when non-zero, enables keepalive pings.
	PingInterval time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DialTimeout:    10 * time.Second,
		MasterInterval: 50 * time.Millisecond,
	}
}

// Engine is the connection state machine. Connect and Run must be called
// from the same goroutine; Stop, Send, Phase and State are safe from any.
type Engine struct {
	opts   Options
	coords CoordinateSource
	haptic haptics.Sink
	logger *log.Logger
	state  *State

	mu    sync.Mutex // guards phase, conn and stopC
	phase Phase
	conn  *wsConn
	stopC chan struct{}

	// Connection-scoped fields, touched only by the transition function.
	mode            protocol.Mode
	expectedAck     protocol.Code
	initialPullSent bool
	answered        uint64 // coordinates sent on this connection

	shouldContinue atomic.Bool
}

// New creates a disconnected engine. A nil sink discards haptic levels and a
// nil logger means log.Default().
func New(opts Options, coords CoordinateSource, sink haptics.Sink, logger *log.Logger) *Engine {
	if opts.MasterInterval <= 0 {
		opts.MasterInterval = DefaultOptions().MasterInterval
	}
	if sink == nil {
		sink = haptics.Discard
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		opts:   opts,
		coords: coords,
		haptic: sink,
		logger: logger,
		state:  &State{},
	}
}

// State returns the observable session record.
func (e *Engine) State() *State {
	return e.state
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	prev := e.phase
	e.phase = p
	e.mu.Unlock()
	e.state.setPhase(p)
	if prev != p {
		e.logger.Printf("link: %s -> %s", prev, p)
	}
}

// Connect opens the socket to address and runs the handshake for mode.
// It returns once the engine is Established, or with an error after falling
// back to Disconnected. Nothing is retried.
func (e *Engine) Connect(ctx context.Context, address string, mode protocol.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("link: %w: %d", protocol.ErrUnknownMode, int(mode))
	}
	u, err := ValidateAddress(address)
	if err != nil {
		return fmt.Errorf("link: %w", err)
	}

	e.mu.Lock()
	if e.phase != Disconnected {
		p := e.phase
		e.mu.Unlock()
		return fmt.Errorf("link: connect while %s", p)
	}
	e.stopC = make(chan struct{})
	e.mu.Unlock()

	e.mode = mode
	e.expectedAck = protocol.Unrecognized
	e.initialPullSent = false
	e.answered = 0
	e.shouldContinue.Store(true)
	e.state.begin(mode, u.String())
	e.setPhase(Connecting)

	e.logger.Printf("link: connecting to %s as %s", u, mode)
	conn, err := dial(ctx, u, e.opts)
	if err != nil {
		e.setPhase(Disconnected)
		return fmt.Errorf("link: %w: %s: %w", ErrConnectionFailed, u, err)
	}
	e.mu.Lock()
	e.conn = conn
	e.mu.Unlock()

	if err := e.handle(Event{Kind: Opened}); err != nil {
		return err
	}

	select {
	case ev, ok := <-conn.events:
		if !ok {
			ev = Event{Kind: Closed}
		}
		return e.handle(ev)
	case <-ctx.Done():
		e.disconnect()
		return fmt.Errorf("link: %w: %w: waiting for %s: %w", ErrHandshakeFailed, ErrResponseTimeout, e.expectedAck, ctx.Err())
	}
}

// Run drives the loop of the negotiated mode until Stop is called, ctx is
// cancelled or the connection fails. A graceful stop sends the kill code once,
// closes the socket and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	phase, conn, stopC := e.phase, e.conn, e.stopC
	e.mu.Unlock()
	if phase != Established {
		return fmt.Errorf("link: run while %s: %w", phase, ErrNotConnected)
	}

	switch e.mode {
	case protocol.ClientSlaveSync:
		e.setPhase(SyncLoop)
	case protocol.ClientSlaveAsync:
		e.setPhase(AsyncLoop)
	case protocol.ClientMaster:
		e.setPhase(MasterLoop)
	}

	if !e.initialPullSent {
		if err := e.send(protocol.EncodeControl(protocol.Start(e.mode))); err != nil {
			return e.lost(err)
		}
		e.initialPullSent = true
	}

	var tick <-chan time.Time
	if e.mode == protocol.ClientMaster {
		t := time.NewTicker(e.opts.MasterInterval)
		defer t.Stop()
		tick = t.C
	}

	var timeout <-chan time.Time
	var timer *time.Timer
	if e.opts.ResponseTimeout > 0 && e.mode != protocol.ClientMaster {
		timer = time.NewTimer(e.opts.ResponseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		if !e.shouldContinue.Load() {
			return e.kill()
		}

		select {
		case <-ctx.Done():
			e.shouldContinue.Store(false)

		case <-stopC:

		case ev, ok := <-conn.events:
			if !e.shouldContinue.Load() {
				return e.kill()
			}
			if !ok {
				ev = Event{Kind: Closed}
			}
			answered := e.answered
			if err := e.handle(ev); err != nil {
				return err
			}
			// only an answered pull restarts the wait
			if timer != nil && e.answered != answered {
				timer.Reset(e.opts.ResponseTimeout)
			}

		case <-tick:
			if err := e.respond(); err != nil {
				return err
			}

		case <-timeout:
			e.disconnect()
			return fmt.Errorf("link: %w: no %s within %s", ErrResponseTimeout,
				protocol.DataRequest(e.mode), e.opts.ResponseTimeout)
		}
	}
}

// Stop asks the running loop to send the kill code and disconnect.
func (e *Engine) Stop() {
	e.shouldContinue.Store(false)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopC == nil {
		return
	}
	select {
	case <-e.stopC:
	default:
		close(e.stopC)
	}
}

// Send writes a raw token on an established connection.
func (e *Engine) Send(token string) error {
	if !e.Phase().Connected() {
		return fmt.Errorf("link: send %q: %w", token, ErrNotConnected)
	}
	return e.send(token)
}

// Close drops the connection without the kill exchange.
func (e *Engine) Close() error {
	e.shouldContinue.Store(false)
	return e.disconnect()
}

// handle is the transition function for socket events.
func (e *Engine) handle(ev Event) error {
	switch ev.Kind {
	case Opened:
		e.expectedAck = protocol.Acknowledgement(e.mode)
		if err := e.send(protocol.EncodeHandshake(e.mode)); err != nil {
			e.disconnect()
			return fmt.Errorf("link: %w: sending handshake: %w", ErrConnectionFailed, err)
		}
		e.setPhase(HandshakeSent)
		return nil

	case TextReceived:
		code := protocol.Decode(ev.Text)
		e.logger.Printf("link: received %q (%s)", ev.Text, code)
		e.state.setLastResponse(ev.Text)

		switch e.Phase() {
		case HandshakeSent:
			return e.acknowledge(ev.Text, code)
		case SyncLoop:
			return e.syncStep(code)
		case AsyncLoop:
			return e.asyncStep(code)
		case MasterLoop:
			return e.masterStep(code)
		}
		e.logger.Printf("link: ignoring %q while %s", ev.Text, e.Phase())
		return nil

	case Closed, Errored:
		phase := e.Phase()
		e.logger.Printf("link: %s while %s", ev, phase)
		e.disconnect()
		if phase == HandshakeSent {
			return fmt.Errorf("link: %w: connection %s before %s", ErrHandshakeFailed, ev.Kind, e.expectedAck)
		}
		return fmt.Errorf("link: %w: %s", ErrConnectionClosed, ev)
	}
	return fmt.Errorf("link: unexpected event %s", ev)
}

func (e *Engine) acknowledge(text string, code protocol.Code) error {
	if code == e.expectedAck {
		e.setPhase(Established)
		return nil
	}
	e.disconnect()
	switch code {
	case protocol.Unrecognized:
		return fmt.Errorf("link: %w: %w: %q", ErrHandshakeFailed, ErrUnparsableResponse, text)
	case protocol.ServerError:
		return fmt.Errorf("link: %w: %w", ErrHandshakeFailed, ErrServerError)
	}
	return fmt.Errorf("link: %w: expected %s, got %s", ErrHandshakeFailed, e.expectedAck, code)
}

func (e *Engine) syncStep(code protocol.Code) error {
	switch {
	case protocol.IsSyncPull(code):
		if level, ok := protocol.HapticLevel(code); ok {
			if err := e.haptic.Trigger(level); err != nil {
				e.logger.Printf("link: haptic level %d: %v", level, err)
			}
		}
		return e.respond()
	case code == protocol.ServerError:
		return e.serverError()
	}
	e.logger.Printf("link: ignoring %s in %s", code, SyncLoop)
	return nil
}

func (e *Engine) asyncStep(code protocol.Code) error {
	switch code {
	case protocol.PullAsync:
		return e.respond()
	case protocol.ServerError:
		return e.serverError()
	}
	e.logger.Printf("link: ignoring %s in %s", code, AsyncLoop)
	return nil
}

func (e *Engine) masterStep(code protocol.Code) error {
	switch code {
	case protocol.PushTrigger:
		return e.respond()
	case protocol.ServerError:
		return e.serverError()
	}
	e.logger.Printf("link: ignoring %s in %s", code, MasterLoop)
	return nil
}

// respond sends the latest coordinate.
func (e *Engine) respond() error {
	c := e.coords.Coordinate()
	payload := protocol.EncodeCoordinate(c.X, c.Y)
	if err := e.send(payload); err != nil {
		return e.lost(err)
	}
	e.state.setLastPayload(payload)
	e.answered++
	return nil
}

func (e *Engine) serverError() error {
	e.disconnect()
	return fmt.Errorf("link: %w", ErrServerError)
}

func (e *Engine) kill() error {
	tok := protocol.EncodeControl(protocol.Kill(e.mode))
	err := e.send(tok)
	e.disconnect()
	if err != nil {
		return fmt.Errorf("link: sending %s: %w", tok, err)
	}
	return nil
}

func (e *Engine) lost(err error) error {
	e.disconnect()
	return fmt.Errorf("link: %w: %w", ErrConnectionClosed, err)
}

func (e *Engine) send(token string) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	if err := conn.writeText(token); err != nil {
		e.logger.Printf("link: send %q failed: %v", token, err)
		return err
	}
	e.logger.Printf("link: sent %q", token)
	return nil
}

func (e *Engine) disconnect() error {
	e.mu.Lock()
	conn := e.conn
	e.conn = nil
	e.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.close()
	}
	e.setPhase(Disconnected)
	return err
}
