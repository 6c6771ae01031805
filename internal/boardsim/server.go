// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package boardsim plays the board side of the paddle protocol so the client
// can be exercised without the hardware.
package boardsim

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/paddle_client/internal/paddle"
	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// Options controls the simulated board.
type Options struct {
	// PullInterval paces sync pulls and is the async pull period.
	PullInterval time.Duration
	// HapticEvery tags every Nth sync pull with a haptic level, cycling 1..4.
	// Zero sends base pulls only.
	HapticEvery int
	// TriggerEvery sends a push trigger after every N master pushes. Zero never does.
	TriggerEvery int
	// Reject answers every handshake with the server error code.
	Reject bool
}

// Stats summarizes what the board has seen.
type Stats struct {
	Sessions    int               `json:"sessions"`
	Coordinates int               `json:"coordinates"`
	Kills       int               `json:"kills"`
	Mode        protocol.Mode     `json:"mode"`
	Last        paddle.Coordinate `json:"last"`
}

// Server is an http.Handler upgrading every request to one board session.
type Server struct {
	opts     Options
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	stats Stats
}

func NewServer(opts Options, logger *log.Logger) *Server {
	if opts.PullInterval <= 0 {
		opts.PullInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stats returns a copy of the counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("boardsim: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.stats.Sessions++
	s.mu.Unlock()
	s.logger.Printf("boardsim: client connected from %s", r.RemoteAddr)

	sess := &session{srv: s, conn: conn, inbox: make(chan string, 16), done: make(chan struct{})}
	go sess.read()
	sess.run()
	close(sess.done)
	s.logger.Printf("boardsim: client %s gone", r.RemoteAddr)
}

type session struct {
	srv   *Server
	conn  *websocket.Conn
	inbox chan string // closed when the socket read fails
	done  chan struct{}
	mode  protocol.Mode
}

func (ss *session) read() {
	defer close(ss.inbox)
	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case ss.inbox <- string(data):
		case <-ss.done:
			return
		}
	}
}

func (ss *session) send(c protocol.Code) bool {
	if err := ss.conn.WriteMessage(websocket.TextMessage, []byte(c.Token())); err != nil {
		ss.srv.logger.Printf("boardsim: write %s: %v", c, err)
		return false
	}
	return true
}

func (ss *session) run() {
	if !ss.handshake() {
		return
	}

	// wait for the start code
	for msg := range ss.inbox {
		switch protocol.Decode(msg) {
		case protocol.Start(ss.mode):
			ss.srv.logger.Printf("boardsim: %s started", ss.mode)
			switch ss.mode {
			case protocol.ClientSlaveSync:
				ss.syncLoop()
			case protocol.ClientSlaveAsync:
				ss.asyncLoop()
			case protocol.ClientMaster:
				ss.masterLoop()
			}
			return
		case protocol.Kill(ss.mode):
			ss.killed()
			return
		default:
			ss.srv.logger.Printf("boardsim: ignoring %q before start", msg)
		}
	}
}

func (ss *session) handshake() bool {
	msg, ok := <-ss.inbox
	if !ok {
		return false
	}
	code := protocol.Decode(msg)
	mode, ok := protocol.ModeOf(code)
	if !ok || code != protocol.HandshakeRequest(mode) || ss.srv.opts.Reject {
		ss.srv.logger.Printf("boardsim: rejecting handshake %q", msg)
		ss.send(protocol.ServerError)
		return false
	}
	ss.mode = mode
	ss.srv.mu.Lock()
	ss.srv.stats.Mode = mode
	ss.srv.mu.Unlock()
	return ss.send(protocol.Acknowledgement(mode))
}

// handle records one inbound message and reports whether the session goes on.
func (ss *session) handle(msg string) bool {
	if protocol.Decode(msg) == protocol.Kill(ss.mode) {
		ss.killed()
		return false
	}
	x, y, err := protocol.DecodeCoordinate(msg)
	if err != nil {
		ss.srv.logger.Printf("boardsim: ignoring %q: %v", msg, err)
		return true
	}
	ss.srv.mu.Lock()
	ss.srv.stats.Coordinates++
	ss.srv.stats.Last = paddle.Coordinate{X: x, Y: y}
	ss.srv.mu.Unlock()
	return true
}

func (ss *session) killed() {
	ss.srv.mu.Lock()
	ss.srv.stats.Kills++
	ss.srv.mu.Unlock()
	ss.srv.logger.Printf("boardsim: %s killed by client", ss.mode)
}

func (ss *session) syncLoop() {
	for n := 1; ; n++ {
		if !ss.send(ss.syncPull(n)) {
			return
		}
		msg, ok := <-ss.inbox
		if !ok || !ss.handle(msg) {
			return
		}
		select {
		case <-time.After(ss.srv.opts.PullInterval):
		case msg, ok := <-ss.inbox:
			if !ok || !ss.handle(msg) {
				return
			}
		}
	}
}

// syncPull picks the pull code for the nth request.
func (ss *session) syncPull(n int) protocol.Code {
	every := ss.srv.opts.HapticEvery
	if every <= 0 || n%every != 0 {
		return protocol.PullSync
	}
	level := protocol.Level((n/every-1)%int(protocol.MaxLevel) + 1)
	c, _ := protocol.PullWithHaptic(level)
	return c
}

func (ss *session) asyncLoop() {
	ticker := time.NewTicker(ss.srv.opts.PullInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !ss.send(protocol.PullAsync) {
				return
			}
		case msg, ok := <-ss.inbox:
			if !ok || !ss.handle(msg) {
				return
			}
		}
	}
}

func (ss *session) masterLoop() {
	pushes := 0
	for msg := range ss.inbox {
		if !ss.handle(msg) {
			return
		}
		pushes++
		if every := ss.srv.opts.TriggerEvery; every > 0 && pushes%every == 0 {
			if !ss.send(protocol.PushTrigger) {
				return
			}
		}
	}
}
