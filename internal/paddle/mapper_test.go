// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package paddle

import (
	"math"
	"testing"
)

var testBounds = Bounds{XMax: 127, YMax: 31}

func TestMapperNextAppliesGain(t *testing.T) {
	m := NewMapper(10, testBounds)
	got := m.Next(0.34, 0.26, Coordinate{X: 50, Y: 10})
	want := Coordinate{X: 53, Y: 13}
	if got != want {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestMapperRoundsHalfAwayFromZero(t *testing.T) {
	m := NewMapper(10, testBounds)
	got := m.Next(0.25, -0.25, Coordinate{X: 50, Y: 10})
	want := Coordinate{X: 53, Y: 7}
	if got != want {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestMapperClamps(t *testing.T) {
	inputs := []float64{-1e9, -1000, -3.3, -0.01, 0, 0.01, 2.7, 1000, 1e9, math.MaxFloat32}
	starts := []Coordinate{{0, 0}, {127, 31}, {64, 16}}
	for _, sx := range inputs {
		for _, sy := range inputs {
			for _, start := range starts {
				m := NewMapper(10, testBounds)
				got := m.Next(sx, sy, start)
				if got.X < 0 || got.X > testBounds.XMax || got.Y < 0 || got.Y > testBounds.YMax {
					t.Fatalf("Next(%v, %v, %v) = %v out of bounds", sx, sy, start, got)
				}
			}
		}
	}
}

func TestMapperSaturatesInsteadOfWrapping(t *testing.T) {
	m := NewMapper(10, testBounds)
	if got := m.Next(100, -100, Coordinate{X: 120, Y: 3}); got != (Coordinate{X: 127, Y: 0}) {
		t.Fatalf("Next = %v, want (127, 0)", got)
	}
}

func TestMapperOutOfRangePrevious(t *testing.T) {
	m := NewMapper(10, testBounds)
	got := m.Next(1, -1, Coordinate{X: math.MaxInt, Y: math.MinInt})
	if got != (Coordinate{X: 127, Y: 0}) {
		t.Fatalf("Next from extreme previous = %v, want (127, 0)", got)
	}

	wide := NewMapper(10, Bounds{XMax: math.MaxInt, YMax: math.MaxInt})
	got = wide.Next(1e12, 1e12, Coordinate{X: math.MaxInt - 1, Y: math.MaxInt})
	if got != (Coordinate{X: math.MaxInt, Y: math.MaxInt}) {
		t.Fatalf("Next near MaxInt = %v, want saturation", got)
	}
}

func TestMapperZeroDeltaIsIdentity(t *testing.T) {
	m := NewMapper(10, testBounds)
	for _, c := range []Coordinate{{0, 0}, {127, 31}, {64, 7}} {
		if got := m.Next(0, 0, c); got != c {
			t.Fatalf("Next(0, 0, %v) = %v", c, got)
		}
	}
}

func TestMapperDirectionalReversal(t *testing.T) {
	m := NewMapper(10, testBounds)
	start := Coordinate{X: 60, Y: 15}

	// First step has no history: plain delta.
	c := m.Step(Reading{Smoothed: -0.2, Raw: -0.2}, Reading{}, start)
	if c.X != 58 {
		t.Fatalf("first step X = %d, want 58", c.X)
	}

	// Smoothed fell from -0.2 to -0.5 and raw is negative: delta becomes +5.
	c = m.Step(Reading{Smoothed: -0.5, Raw: -0.9}, Reading{}, c)
	if c.X != 63 {
		t.Fatalf("reversal step X = %d, want 63", c.X)
	}

	// Smoothed rose: no reversal even though raw is negative.
	c = m.Step(Reading{Smoothed: -0.3, Raw: -0.1}, Reading{}, c)
	if c.X != 60 {
		t.Fatalf("rising step X = %d, want 60", c.X)
	}

	// Smoothed fell but raw is positive: no reversal.
	c = m.Step(Reading{Smoothed: -0.4, Raw: 0.2}, Reading{}, c)
	if c.X != 56 {
		t.Fatalf("positive raw step X = %d, want 56", c.X)
	}
}

func TestMapperReversalIsPerAxis(t *testing.T) {
	m := NewMapper(10, testBounds)
	start := Coordinate{X: 60, Y: 15}
	c := m.Step(Reading{Smoothed: 0.1, Raw: 0.1}, Reading{Smoothed: 0.1, Raw: 0.1}, start)
	c = m.Step(Reading{Smoothed: 0.1, Raw: 0.1}, Reading{Smoothed: -0.3, Raw: -0.3}, c)
	want := Coordinate{X: 62, Y: 19}
	if c != want {
		t.Fatalf("Step = %v, want %v", c, want)
	}
}

func TestMapperNegativeBounds(t *testing.T) {
	m := NewMapper(10, Bounds{XMax: -5, YMax: -1})
	if got := m.Next(3, 3, Coordinate{}); got != (Coordinate{}) {
		t.Fatalf("Next = %v, want (0, 0)", got)
	}
}
