// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Errors returned by the engine. They are wrapped with context; compare with errors.Is.
var (
	ErrInvalidAddress            = errors.New("invalid server address")
	ErrAddressNotWebSocketFormat = errors.New("server address must start with ws:// or wss://")
	ErrConnectionFailed          = errors.New("connection failed")
	ErrHandshakeFailed           = errors.New("handshake failed")
	ErrResponseTimeout           = errors.New("response timeout")
	ErrUnparsableResponse        = errors.New("unparsable response")
	ErrNotConnected              = errors.New("not connected")
	ErrConnectionClosed          = errors.New("connection closed")
	ErrServerError               = errors.New("server reported an error")
)

// ValidateAddress checks that address is a usable WebSocket URL.
func ValidateAddress(address string) (*url.URL, error) {
	a := strings.TrimSpace(address)
	if a == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	u, err := url.Parse(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	case "":
		return nil, fmt.Errorf("%w: %q has no scheme", ErrAddressNotWebSocketFormat, address)
	default:
		return nil, fmt.Errorf("%w: %q uses %s", ErrAddressNotWebSocketFormat, address, u.Scheme)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, address)
	}
	return u, nil
}
