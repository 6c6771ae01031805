// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package paddle

import (
	"math"
	"testing"
)

func TestSmootherEmptyWindowIsZero(t *testing.T) {
	s := NewSmoother(5)
	if got := s.Smoothed(AccelX); got != 0 {
		t.Fatalf("Smoothed on empty window = %v, want 0", got)
	}
}

func TestSmootherSingleSample(t *testing.T) {
	s := NewSmoother(5)
	s.Push(AccelY, 4.0)
	if got := s.Smoothed(AccelY); got != 4.0 {
		t.Fatalf("Smoothed = %v, want 4.0", got)
	}
	if got := s.Smoothed(AccelX); got != 0 {
		t.Fatalf("untouched axis Smoothed = %v, want 0", got)
	}
}

func TestSmootherWindowBounded(t *testing.T) {
	for _, capacity := range []int{1, 3, 5, 10} {
		s := NewSmoother(capacity)
		var pushed []float64
		for i := 0; i < 4*capacity+3; i++ {
			v := float64(i*i%17) - 8.5
			s.Push(GyroZ, v)
			pushed = append(pushed, v)

			if n := s.Len(GyroZ); n > capacity {
				t.Fatalf("capacity %d: window length %d", capacity, n)
			}

			start := len(pushed) - capacity
			if start < 0 {
				start = 0
			}
			var sum float64
			for _, p := range pushed[start:] {
				sum += p
			}
			want := sum / float64(len(pushed)-start)
			if got := s.Smoothed(GyroZ); math.Abs(got-want) > 1e-9 {
				t.Fatalf("capacity %d after %d pushes: Smoothed = %v, want %v", capacity, len(pushed), got, want)
			}
		}
	}
}

func TestSmootherCapacityFloor(t *testing.T) {
	s := NewSmoother(0)
	if s.Capacity() != 1 {
		t.Fatalf("Capacity = %d, want 1", s.Capacity())
	}
	s.Push(AccelX, 1)
	s.Push(AccelX, 3)
	if got := s.Smoothed(AccelX); got != 3 {
		t.Fatalf("Smoothed = %v, want 3", got)
	}
}

func TestSmootherUnknownAxis(t *testing.T) {
	s := NewSmoother(5)
	s.Push(Axis(42), 1)
	if got := s.Smoothed(Axis(42)); got != 0 {
		t.Fatalf("Smoothed(unknown) = %v, want 0", got)
	}
	if Axis(42).String() != "unknown" {
		t.Fatalf("String(unknown) = %q", Axis(42).String())
	}
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother(3)
	s.Push(AccelX, 2)
	s.Reset()
	if s.Len(AccelX) != 0 || s.Smoothed(AccelX) != 0 {
		t.Fatalf("reset smoother still holds samples")
	}
}
