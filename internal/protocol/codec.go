// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package protocol holds the control-code vocabulary exchanged with the board
// server and the text encoding of coordinate payloads.
//
// Every message on the wire is a single text frame carrying one token. The
// vocabulary is closed: adding a code bumps Version.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Version of the control-code vocabulary.
const Version = 1

// Code is one control code of the closed vocabulary.
type Code int

const (
	// Unrecognized is what Decode returns for tokens outside the vocabulary.
	Unrecognized Code = iota

	// Handshake requests and their acknowledgements.
	HandshakeClientSlaveSync
	HandshakeClientSlaveAsync
	HandshakeClientMaster
	AckClientSlaveSync
	AckClientSlaveAsync
	AckClientMaster
	ServerError

	// Transmission control.
	StartClientSlaveSync
	StartClientSlaveAsync
	StartClientMaster
	KillClientSlaveSync
	KillClientSlaveAsync
	KillClientMaster

	// Data pulls.
	PullSync
	PullSyncHaptic1
	PullSyncHaptic2
	PullSyncHaptic3
	PullSyncHaptic4
	PullAsync
	PushTrigger

	numCodes
)

var tokens = [numCodes]string{
	Unrecognized: "",

	HandshakeClientSlaveSync:  "0x001",
	HandshakeClientSlaveAsync: "0x002",
	HandshakeClientMaster:     "0x003",
	AckClientSlaveSync:        "0x004",
	AckClientSlaveAsync:       "0x005",
	AckClientMaster:           "0x006",
	ServerError:               "0xFFB",

	StartClientSlaveSync:  "0x101",
	StartClientSlaveAsync: "0x102",
	StartClientMaster:     "0x103",
	KillClientSlaveSync:   "0x104",
	KillClientSlaveAsync:  "0x105",
	KillClientMaster:      "0x106",

	PullSync:        "0x200",
	PullSyncHaptic1: "0x201",
	PullSyncHaptic2: "0x202",
	PullSyncHaptic3: "0x203",
	PullSyncHaptic4: "0x204",
	PullAsync:       "0x300",
	PushTrigger:     "0x400",
}

var names = [numCodes]string{
	Unrecognized: "unrecognized",

	HandshakeClientSlaveSync:  "handshake-client-slave-sync",
	HandshakeClientSlaveAsync: "handshake-client-slave-async",
	HandshakeClientMaster:     "handshake-client-master",
	AckClientSlaveSync:        "ack-client-slave-sync",
	AckClientSlaveAsync:       "ack-client-slave-async",
	AckClientMaster:           "ack-client-master",
	ServerError:               "server-error",

	StartClientSlaveSync:  "start-client-slave-sync",
	StartClientSlaveAsync: "start-client-slave-async",
	StartClientMaster:     "start-client-master",
	KillClientSlaveSync:   "kill-client-slave-sync",
	KillClientSlaveAsync:  "kill-client-slave-async",
	KillClientMaster:      "kill-client-master",

	PullSync:        "pull-sync",
	PullSyncHaptic1: "pull-sync-haptic-1",
	PullSyncHaptic2: "pull-sync-haptic-2",
	PullSyncHaptic3: "pull-sync-haptic-3",
	PullSyncHaptic4: "pull-sync-haptic-4",
	PullAsync:       "pull-async",
	PushTrigger:     "push-trigger",
}

var byToken = func() map[string]Code {
	m := make(map[string]Code, numCodes)
	for c := Unrecognized + 1; c < numCodes; c++ {
		m[tokens[c]] = c
	}
	return m
}()

// Codes returns every defined code, Unrecognized excluded.
func Codes() []Code {
	out := make([]Code, 0, numCodes-1)
	for c := Unrecognized + 1; c < numCodes; c++ {
		out = append(out, c)
	}
	return out
}

// Token returns the wire token of c, or "" for Unrecognized and out-of-range values.
func (c Code) Token() string {
	if c <= Unrecognized || c >= numCodes {
		return ""
	}
	return tokens[c]
}

func (c Code) String() string {
	if c < Unrecognized || c >= numCodes {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return names[c]
}

// Decode maps a wire token to its code. Surrounding whitespace is ignored and
// hex digits are matched case-insensitively; anything else yields Unrecognized.
func Decode(token string) Code {
	t := strings.TrimSpace(token)
	if len(t) > 2 && (t[:2] == "0x" || t[:2] == "0X") {
		t = "0x" + strings.ToUpper(t[2:])
	}
	if c, ok := byToken[t]; ok {
		return c
	}
	return Unrecognized
}

// EncodeHandshake returns the handshake request token for mode.
func EncodeHandshake(mode Mode) string {
	return HandshakeRequest(mode).Token()
}

// EncodeControl returns the wire token of code.
func EncodeControl(code Code) string {
	return code.Token()
}

// HandshakeRequest returns the handshake request code for mode.
func HandshakeRequest(mode Mode) Code {
	switch mode {
	case ClientSlaveSync:
		return HandshakeClientSlaveSync
	case ClientSlaveAsync:
		return HandshakeClientSlaveAsync
	case ClientMaster:
		return HandshakeClientMaster
	}
	return Unrecognized
}

// Acknowledgement returns the code the server answers a handshake for mode with.
func Acknowledgement(mode Mode) Code {
	switch mode {
	case ClientSlaveSync:
		return AckClientSlaveSync
	case ClientSlaveAsync:
		return AckClientSlaveAsync
	case ClientMaster:
		return AckClientMaster
	}
	return Unrecognized
}

// Start returns the transmission start code for mode.
func Start(mode Mode) Code {
	switch mode {
	case ClientSlaveSync:
		return StartClientSlaveSync
	case ClientSlaveAsync:
		return StartClientSlaveAsync
	case ClientMaster:
		return StartClientMaster
	}
	return Unrecognized
}

// Kill returns the transmission stop code for mode.
func Kill(mode Mode) Code {
	switch mode {
	case ClientSlaveSync:
		return KillClientSlaveSync
	case ClientSlaveAsync:
		return KillClientSlaveAsync
	case ClientMaster:
		return KillClientMaster
	}
	return Unrecognized
}

// DataRequest returns the base pull code for mode. For ClientMaster it is the
// out-of-band push trigger.
func DataRequest(mode Mode) Code {
	switch mode {
	case ClientSlaveSync:
		return PullSync
	case ClientSlaveAsync:
		return PullAsync
	case ClientMaster:
		return PushTrigger
	}
	return Unrecognized
}

// ModeOf returns the mode a handshake request, acknowledgement, start or kill
// code belongs to.
func ModeOf(c Code) (Mode, bool) {
	switch c {
	case HandshakeClientSlaveSync, AckClientSlaveSync, StartClientSlaveSync, KillClientSlaveSync:
		return ClientSlaveSync, true
	case HandshakeClientSlaveAsync, AckClientSlaveAsync, StartClientSlaveAsync, KillClientSlaveAsync:
		return ClientSlaveAsync, true
	case HandshakeClientMaster, AckClientMaster, StartClientMaster, KillClientMaster:
		return ClientMaster, true
	}
	return 0, false
}

// PullWithHaptic returns the sync pull code tagged with level. Level 0 is the
// base pull.
func PullWithHaptic(level Level) (Code, bool) {
	if !level.Valid() {
		return Unrecognized, false
	}
	return PullSync + Code(level), true
}

// IsSyncPull reports whether c is the base sync pull or one of its haptic variants.
func IsSyncPull(c Code) bool {
	return c >= PullSync && c <= PullSyncHaptic4
}

// HapticLevel returns the haptic level tagged on a sync pull. The base pull
// carries level 0 and reports false.
func HapticLevel(c Code) (Level, bool) {
	if c >= PullSyncHaptic1 && c <= PullSyncHaptic4 {
		return Level(c - PullSync), true
	}
	return 0, false
}

// EncodeCoordinate renders a coordinate payload as "x,y".
func EncodeCoordinate(x, y int) string {
	return strconv.Itoa(x) + "," + strconv.Itoa(y)
}

// DecodeCoordinate parses a payload produced by EncodeCoordinate.
func DecodeCoordinate(payload string) (x, y int, err error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(payload), ",")
	if !ok {
		return 0, 0, fmt.Errorf("coordinate payload %q: missing separator", payload)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, fmt.Errorf("coordinate payload %q: x: %w", payload, err)
	}
	if y, err = strconv.Atoi(strings.TrimSpace(ys)); err != nil {
		return 0, 0, fmt.Errorf("coordinate payload %q: y: %w", payload, err)
	}
	return x, y, nil
}
