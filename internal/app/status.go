// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/paddle_client/internal/link"
	"github.com/relabs-tech/paddle_client/internal/paddle"
)

var statusUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// CoordinateView is the /api/coordinate payload.
type CoordinateView struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Ticks uint64    `json:"ticks"`
	Time  time.Time `json:"time"`
}

// StatusUpdate is pushed on /ws/session.
type StatusUpdate struct {
	Session    link.Snapshot  `json:"session"`
	Coordinate CoordinateView `json:"coordinate"`
}

// StatusServer exposes the session record and the coordinate to observers.
type StatusServer struct {
	state   *link.State
	tracker *paddle.Tracker
	push    time.Duration
	router  *mux.Router
}

func NewStatusServer(state *link.State, tracker *paddle.Tracker, push time.Duration) *StatusServer {
	if push <= 0 {
		push = 200 * time.Millisecond
	}
	s := &StatusServer{state: state, tracker: tracker, push: push, router: mux.NewRouter()}
	s.router.HandleFunc("/api/session", s.handleSession).Methods(http.MethodGet)
	s.router.HandleFunc("/api/coordinate", s.handleCoordinate).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/session", s.handleSessionWS)
	return s
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *StatusServer) coordinate() CoordinateView {
	c := s.tracker.Coordinate()
	return CoordinateView{X: c.X, Y: c.Y, Ticks: s.tracker.Ticks(), Time: time.Now()}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("status: json encode error: %v", err)
	}
}

func (s *StatusServer) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.state.Snapshot())
}

func (s *StatusServer) handleCoordinate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.coordinate())
}

func (s *StatusServer) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("status: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// The observer never sends anything; reading only detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.push)
	defer ticker.Stop()
	for {
		update := StatusUpdate{Session: s.state.Snapshot(), Coordinate: s.coordinate()}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(update); err != nil {
			log.Printf("status: websocket write error: %v", err)
			return
		}
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// serve runs handler on addr until ctx is done.
func serve(ctx context.Context, addr string, handler http.Handler, name string) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", name, addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
