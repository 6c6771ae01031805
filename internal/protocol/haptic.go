// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package protocol

// Level is a haptic feedback intensity, 0 (none) to 4 (strongest).
type Level int

const MaxLevel Level = 4

// Valid reports whether l is within 0..MaxLevel.
func (l Level) Valid() bool {
	return l >= 0 && l <= MaxLevel
}
