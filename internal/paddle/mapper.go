// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package paddle

import (
	"fmt"
	"math"
)

// Coordinate is the paddle position on the board display.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Bounds is the closed range [0, XMax] x [0, YMax] a coordinate is clamped to.
type Bounds struct {
	XMax int
	YMax int
}

// Clamp saturates c into b.
func (b Bounds) Clamp(c Coordinate) Coordinate {
	return Coordinate{X: clamp(c.X, b.XMax), Y: clamp(c.Y, b.YMax)}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Reading is the smoothed and raw value of one axis for a single tick.
type Reading struct {
	Smoothed float64
	Raw      float64
}

// Mapper turns smoothed acceleration into coordinate deltas.
//
// It remembers the previous smoothed value of each axis for the
// directional-reversal rule, so one Mapper belongs to one paddle.
type Mapper struct {
	gain   float64
	bounds Bounds

	prev     [2]float64
	havePrev [2]bool
}

// NewMapper returns a mapper applying gain to every smoothed value.
// Negative bounds are treated as 0.
func NewMapper(gain float64, bounds Bounds) *Mapper {
	if bounds.XMax < 0 {
		bounds.XMax = 0
	}
	if bounds.YMax < 0 {
		bounds.YMax = 0
	}
	return &Mapper{gain: gain, bounds: bounds}
}

// Bounds returns the clamp range of the mapper.
func (m *Mapper) Bounds() Bounds {
	return m.bounds
}

// Next moves previous by the smoothed values, using them as the raw values too.
func (m *Mapper) Next(smoothedX, smoothedY float64, previous Coordinate) Coordinate {
	return m.Step(
		Reading{Smoothed: smoothedX, Raw: smoothedX},
		Reading{Smoothed: smoothedY, Raw: smoothedY},
		previous,
	)
}

// Step moves previous by round(smoothed*gain) on each axis and clamps the result.
//
// When an axis' smoothed value dropped since the last step and its raw value
// is negative, the delta is applied as its absolute value. This keeps the
// paddle from bouncing back right after a peak.
func (m *Mapper) Step(x, y Reading, previous Coordinate) Coordinate {
	previous = m.bounds.Clamp(previous)
	next := Coordinate{
		X: addSat(previous.X, m.delta(0, x)),
		Y: addSat(previous.Y, m.delta(1, y)),
	}
	return m.bounds.Clamp(next)
}

func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// maxDelta caps a single step before the int conversion.
const maxDelta = 1 << 30

func (m *Mapper) delta(i int, r Reading) int {
	f := math.Round(r.Smoothed * m.gain)
	switch {
	case math.IsNaN(f):
		f = 0
	case f > maxDelta:
		f = maxDelta
	case f < -maxDelta:
		f = -maxDelta
	}
	d := int(f)
	if m.havePrev[i] && r.Smoothed < m.prev[i] && r.Raw < 0 && d < 0 {
		d = -d
	}
	m.prev[i] = r.Smoothed
	m.havePrev[i] = true
	return d
}

// Reset forgets the smoothed history.
func (m *Mapper) Reset() {
	m.havePrev = [2]bool{}
}
