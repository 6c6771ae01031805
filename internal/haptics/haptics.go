// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package haptics delivers haptic levels requested by the board server to
// whatever drives the vibration motor.
package haptics

import (
	"fmt"
	"log"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// Sink receives haptic levels 0 (none) to 4 (strongest).
type Sink interface {
	Trigger(level protocol.Level) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(level protocol.Level) error

func (f SinkFunc) Trigger(level protocol.Level) error { return f(level) }

// LogSink only logs the requested level.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Trigger(level protocol.Level) error {
	if !level.Valid() {
		return fmt.Errorf("haptic level %d out of range 0-%d", level, protocol.MaxLevel)
	}
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("haptics: level %d feedback", level)
	return nil
}

// Discard drops every level.
var Discard Sink = SinkFunc(func(protocol.Level) error { return nil })
