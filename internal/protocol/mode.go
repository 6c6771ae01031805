// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the transmission role negotiated during the handshake.
// It is fixed for the lifetime of a connection.
type Mode int

const (
	// ClientSlaveSync answers explicit pulls and blocks on each receive.
	ClientSlaveSync Mode = iota + 1
	// ClientSlaveAsync answers pulls while the pipeline keeps ticking.
	ClientSlaveAsync
	// ClientMaster pushes coordinates on its own schedule.
	ClientMaster
)

// ErrUnknownMode is returned by ParseMode for unsupported names.
var ErrUnknownMode = errors.New("unknown protocol mode")

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ClientSlaveSync, ClientSlaveAsync, ClientMaster}
}

func (m Mode) String() string {
	switch m {
	case ClientSlaveSync:
		return "client-slave-sync"
	case ClientSlaveAsync:
		return "client-slave-async"
	case ClientMaster:
		return "client-master"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ClientSlaveSync && m <= ClientMaster
}

// MarshalText encodes the mode by name; an unset mode encodes as "".
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (m *Mode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = 0
		return nil
	}
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode accepts the names returned by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes() {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
