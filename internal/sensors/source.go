// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/imu"
)

// ErrSensorUnavailable reports a missing accelerometer or gyroscope.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// Capabilities lists what a source can measure.
type Capabilities struct {
	Accelerometer bool
	Gyroscope     bool
}

// SampleFunc receives every sample a source produces.
type SampleFunc func(imu.RawSample)

// Source delivers RawSamples to a callback until its context is done.
type Source interface {
	Name() string
	Capabilities() Capabilities
	// Run blocks, calling fn for each sample. It returns nil when ctx ends.
	Run(ctx context.Context, fn SampleFunc) error
	Close() error
}

// CheckAvailable must pass before ingestion starts.
func CheckAvailable(s Source) error {
	if s == nil {
		return fmt.Errorf("%w: no source", ErrSensorUnavailable)
	}
	c := s.Capabilities()
	switch {
	case !c.Accelerometer && !c.Gyroscope:
		return fmt.Errorf("%w: %s has no accelerometer and no gyroscope", ErrSensorUnavailable, s.Name())
	case !c.Accelerometer:
		return fmt.Errorf("%w: %s has no accelerometer", ErrSensorUnavailable, s.Name())
	case !c.Gyroscope:
		return fmt.Errorf("%w: %s has no gyroscope", ErrSensorUnavailable, s.Name())
	}
	return nil
}

// Open builds the source selected by cfg.SensorSource.
func Open(cfg *config.Config) (Source, error) {
	interval := config.Millis(cfg.SampleInterval)
	switch cfg.SensorSource {
	case "mpu9250":
		return NewMPU9250Source(MPU9250Options{
			SPIDevice:  cfg.IMUSPIDevice,
			CSPin:      cfg.IMUCSPin,
			AccelRange: cfg.IMUAccelRange,
			GyroRange:  cfg.IMUGyroRange,
			Interval:   interval,
		})
	case "serial":
		return OpenSerialSource(cfg.SerialPort, cfg.SerialBaudRate)
	case "mqtt":
		return NewMQTTSource(cfg.MQTTBroker, cfg.MQTTClientID+"-samples", cfg.TopicSamples)
	case "mock":
		return NewMockSource(interval), nil
	}
	return nil, fmt.Errorf("%w: unknown source %q", ErrSensorUnavailable, cfg.SensorSource)
}

// poll calls read on every tick and forwards good samples to fn. Read
// errors are logged and the tick is skipped.
func poll(ctx context.Context, name string, interval time.Duration, read func(time.Time) (imu.RawSample, error), fn SampleFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			s, err := read(t)
			if err != nil {
				log.Printf("%s: read error: %v", name, err)
				continue
			}
			fn(s)
		}
	}
}
