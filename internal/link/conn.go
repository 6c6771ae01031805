// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

// WebSocket transport:
// - TCP keepalive on the dialer
// - optional ping ticker with a pong watchdog (read deadline)
// - one background reader turning frames into Events
// - writes serialized behind a mutex

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	eventBuf  = 16
)

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex

	events chan Event
	done   chan struct{}
	once   sync.Once
}

func dial(ctx context.Context, u *url.URL, opts Options) (*wsConn, error) {
	d := websocket.Dialer{
		HandshakeTimeout: opts.DialTimeout,
		NetDialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 15 * time.Second,
		}).DialContext,
	}

	conn, _, err := d.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	w := &wsConn{
		conn:   conn,
		events: make(chan Event, eventBuf),
		done:   make(chan struct{}),
	}

	conn.SetReadLimit(1 << 16)
	if opts.PingInterval > 0 {
		pongWait := 4 * opts.PingInterval
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		go w.pingLoop(opts.PingInterval)
	}

	go w.readLoop()
	return w, nil
}

// readLoop is the only reader of the socket. It ends with exactly one Closed
// or Errored event, then closes the events channel.
func (w *wsConn) readLoop() {
	defer close(w.events)
	for {
		typ, data, err := w.conn.ReadMessage()
		if err != nil {
			ev := Event{Kind: Errored, Err: err}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				ev.Kind = Closed
			}
			w.deliver(ev)
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		if !w.deliver(Event{Kind: TextReceived, Text: string(data)}) {
			return
		}
	}
}

func (w *wsConn) deliver(ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.done:
		return false
	}
}

func (w *wsConn) pingLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			w.mu.Lock()
			err := w.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
			w.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (w *wsConn) writeText(s string) error {
	select {
	case <-w.done:
		return net.ErrClosed
	default:
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, []byte(s))
}

// close sends a close frame (best effort) and releases the socket. Safe to
// call more than once.
func (w *wsConn) close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		w.mu.Unlock()
		err = w.conn.Close()
	})
	return err
}
