// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import "fmt"

// EventKind classifies socket events fed to the engine.
type EventKind int

const (
	Opened EventKind = iota + 1
	TextReceived
	Closed
	Errored
)

func (k EventKind) String() string {
	switch k {
	case Opened:
		return "opened"
	case TextReceived:
		return "text"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one socket occurrence. Text is set for TextReceived, Err for
// Closed and Errored.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

func (e Event) String() string {
	switch e.Kind {
	case TextReceived:
		return fmt.Sprintf("%s %q", e.Kind, e.Text)
	case Closed, Errored:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
	}
	return e.Kind.String()
}
