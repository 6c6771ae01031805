// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import "fmt"

// Phase is the state of the connection state machine.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	HandshakeSent
	Established
	SyncLoop
	AsyncLoop
	MasterLoop
)

var phaseNames = []string{
	Disconnected:  "disconnected",
	Connecting:    "connecting",
	HandshakeSent: "handshake-sent",
	Established:   "established",
	SyncLoop:      "sync-loop",
	AsyncLoop:     "async-loop",
	MasterLoop:    "master-loop",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Connected reports whether the handshake has completed in this phase.
func (p Phase) Connected() bool {
	return p >= Established
}
