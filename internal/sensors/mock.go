// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package sensors

import (
	"context"
	"math"
	"time"

	"github.com/relabs-tech/paddle_client/internal/imu"
)

type MockSource struct {
	start    time.Time
	interval time.Duration
}

// NewMockSource creates a mock source that generates
// smooth changing motion.
func NewMockSource(interval time.Duration) *MockSource {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &MockSource{start: time.Now(), interval: interval}
}

// MockSample is the synthetic motion elapsed seconds after start.
func MockSample(elapsed float64) imu.RawSample {
	return imu.RawSample{
		Source: "mock",
		Ax:     0.4 * math.Sin(elapsed),
		Ay:     0.3 * math.Cos(elapsed*0.7),
		Az:     9.81,
		Gx:     20 * math.Cos(elapsed*0.7),
		Gy:     15 * math.Sin(elapsed),
		Gz:     0,
	}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Capabilities() Capabilities {
	return Capabilities{Accelerometer: true, Gyroscope: true}
}

func (m *MockSource) Run(ctx context.Context, fn SampleFunc) error {
	return poll(ctx, m.Name(), m.interval, func(t time.Time) (imu.RawSample, error) {
		s := MockSample(t.Sub(m.start).Seconds())
		s.Time = t
		return s, nil
	}, fn)
}

func (m *MockSource) Close() error { return nil }
