// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package paddle

import (
	"sync"

	"github.com/relabs-tech/paddle_client/internal/imu"
)

// Tracker runs the sample pipeline and owns the current coordinate.
//
// Ingest is called from the sensor goroutine; Coordinate may be called from
// any goroutine and always returns a complete pair.
type Tracker struct {
	mu       sync.RWMutex
	smoother *Smoother
	mapper   *Mapper
	current  Coordinate
	ticks    uint64
	last     imu.RawSample
}

// NewTracker creates a tracker starting at start (clamped to the mapper bounds).
func NewTracker(smoother *Smoother, mapper *Mapper, start Coordinate) *Tracker {
	return &Tracker{
		smoother: smoother,
		mapper:   mapper,
		current:  mapper.Bounds().Clamp(start),
	}
}

// Ingest feeds one sample through the smoother and mapper and returns the new
// coordinate. The x/y paddle axes follow the accelerometer x/y axes.
func (t *Tracker) Ingest(s imu.RawSample) Coordinate {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.smoother.Push(AccelX, s.Ax)
	t.smoother.Push(AccelY, s.Ay)
	t.smoother.Push(AccelZ, s.Az)
	t.smoother.Push(GyroX, s.Gx)
	t.smoother.Push(GyroY, s.Gy)
	t.smoother.Push(GyroZ, s.Gz)

	t.current = t.mapper.Step(
		Reading{Smoothed: t.smoother.Smoothed(AccelX), Raw: s.Ax},
		Reading{Smoothed: t.smoother.Smoothed(AccelY), Raw: s.Ay},
		t.current,
	)
	t.ticks++
	t.last = s
	return t.current
}

// Coordinate returns the latest coordinate.
func (t *Tracker) Coordinate() Coordinate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Ticks returns the number of samples ingested so far.
func (t *Tracker) Ticks() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ticks
}

// LastSample returns the most recent raw sample.
func (t *Tracker) LastSample() imu.RawSample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}
