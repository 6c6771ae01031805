// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"sync"
	"time"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// Snapshot is a copy of the session record.
type Snapshot struct {
	Connected     bool          `json:"connected"`
	Mode          protocol.Mode `json:"mode"`
	ServerAddress string        `json:"server_address"`
	LastResponse  *string       `json:"last_response,omitempty"` // last token received
	LastPayload   string        `json:"last_payload,omitempty"`  // last coordinate sent
	Phase         Phase         `json:"phase"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// State is the observable session record. Only the engine writes it; any
// goroutine may read it through Snapshot.
type State struct {
	mu sync.RWMutex
	s  Snapshot
}

// Snapshot returns a copy of the current session record.
func (st *State) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := st.s
	if st.s.LastResponse != nil {
		r := *st.s.LastResponse
		out.LastResponse = &r
	}
	return out
}

func (st *State) update(fn func(s *Snapshot)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.s)
	st.s.UpdatedAt = time.Now()
}

// begin starts a new session record for a connection attempt.
func (st *State) begin(mode protocol.Mode, address string) {
	st.update(func(s *Snapshot) {
		*s = Snapshot{Mode: mode, ServerAddress: address, Phase: Connecting}
	})
}

func (st *State) setPhase(p Phase) {
	st.update(func(s *Snapshot) {
		s.Phase = p
		s.Connected = p.Connected()
	})
}

func (st *State) setLastResponse(text string) {
	st.update(func(s *Snapshot) { s.LastResponse = &text })
}

func (st *State) setLastPayload(payload string) {
	st.update(func(s *Snapshot) { s.LastPayload = payload })
}
