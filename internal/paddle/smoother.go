// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package paddle

import "sync"

// Axis identifies one channel of a raw sample.
type Axis int

const (
	AccelX Axis = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ

	numAxes
)

var axisNames = [numAxes]string{"accel_x", "accel_y", "accel_z", "gyro_x", "gyro_y", "gyro_z"}

func (a Axis) String() string {
	if a < 0 || a >= numAxes {
		return "unknown"
	}
	return axisNames[a]
}

// Smoother keeps a short rolling window of raw values per axis and reports
// their arithmetic mean.
type Smoother struct {
	mu       sync.RWMutex
	capacity int
	windows  [numAxes][]float64
}

// NewSmoother creates a smoother whose windows hold at most capacity samples.
func NewSmoother(capacity int) *Smoother {
	if capacity < 1 {
		capacity = 1
	}
	s := &Smoother{capacity: capacity}
	for i := range s.windows {
		s.windows[i] = make([]float64, 0, capacity)
	}
	return s
}

// Capacity returns the window size fixed at construction.
func (s *Smoother) Capacity() int {
	return s.capacity
}

// Push appends v to the window of axis, evicting the oldest value once the
// window is full. Unknown axes are ignored.
func (s *Smoother) Push(axis Axis, v float64) {
	if axis < 0 || axis >= numAxes {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[axis]
	if len(w) == s.capacity {
		copy(w, w[1:])
		w = w[:len(w)-1]
	}
	s.windows[axis] = append(w, v)
}

// Smoothed returns the mean of the current window of axis, or 0 when it is empty.
func (s *Smoother) Smoothed(axis Axis) float64 {
	if axis < 0 || axis >= numAxes {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.windows[axis]
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// Len returns the number of samples currently held for axis.
func (s *Smoother) Len(axis Axis) int {
	if axis < 0 || axis >= numAxes {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[axis])
}

// Reset empties every window.
func (s *Smoother) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.windows {
		s.windows[i] = s.windows[i][:0]
	}
}
