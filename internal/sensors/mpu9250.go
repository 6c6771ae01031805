// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/paddle_client/internal/imu"
)

// MPU9250Options selects the SPI wiring and full-scale ranges.
type MPU9250Options struct {
	SPIDevice  string // e.g. /dev/spidev0.0
	CSPin      string // GPIO name of the chip select
	AccelRange byte   // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	GyroRange  byte   // 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	Interval   time.Duration
}

// MPU9250Source polls an MPU-9250 over SPI. Acceleration is reported in g,
// angular rate in °/s.
type MPU9250Source struct {
	dev      *mpu9250.MPU9250
	interval time.Duration
	accelLSB float64
	gyroLSB  float64
}

// AccelLSB returns counts per g for an accelerometer range setting.
func AccelLSB(rng byte) float64 {
	return float64(int(16384) >> (rng & 3))
}

// GyroLSB returns counts per °/s for a gyroscope range setting.
func GyroLSB(rng byte) float64 {
	return 131.0 / float64(int(1)<<(rng&3))
}

// NewMPU9250Source initializes the device. Any failure is reported as
// ErrSensorUnavailable since ingestion cannot start without it.
func NewMPU9250Source(o MPU9250Options) (*MPU9250Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: mpu9250: periph host init: %w", ErrSensorUnavailable, err)
	}

	cs := gpioreg.ByName(o.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("%w: mpu9250: CS pin %q not found", ErrSensorUnavailable, o.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(o.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("%w: mpu9250: SPI transport (%s): %w", ErrSensorUnavailable, o.SPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%w: mpu9250: device creation: %w", ErrSensorUnavailable, err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%w: mpu9250: initialization: %w", ErrSensorUnavailable, err)
	}

	if err := dev.SetAccelRange(o.AccelRange); err != nil {
		return nil, fmt.Errorf("mpu9250: set accel range: %w", err)
	}
	log.Printf("mpu9250: accelerometer range set to %d (±%dg)", o.AccelRange, []int{2, 4, 8, 16}[o.AccelRange&3])

	if err := dev.SetGyroRange(o.GyroRange); err != nil {
		return nil, fmt.Errorf("mpu9250: set gyro range: %w", err)
	}
	log.Printf("mpu9250: gyroscope range set to %d (±%d°/s)", o.GyroRange, []int{250, 500, 1000, 2000}[o.GyroRange&3])

	if err := dev.Calibrate(); err != nil {
		log.Printf("Warning: mpu9250 calibration failed: %v", err)
	} else {
		log.Printf("mpu9250 calibration complete")
	}

	interval := o.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &MPU9250Source{
		dev:      dev,
		interval: interval,
		accelLSB: AccelLSB(o.AccelRange),
		gyroLSB:  GyroLSB(o.GyroRange),
	}, nil
}

func (s *MPU9250Source) Name() string { return "mpu9250" }

func (s *MPU9250Source) Capabilities() Capabilities {
	return Capabilities{Accelerometer: true, Gyroscope: true}
}

func (s *MPU9250Source) Run(ctx context.Context, fn SampleFunc) error {
	return poll(ctx, s.Name(), s.interval, s.read, fn)
}

// Close is a no-op; the SPI port is owned by the periph host.
func (s *MPU9250Source) Close() error { return nil }

func (s *MPU9250Source) read(t time.Time) (imu.RawSample, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("accel X: %w", err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("accel Y: %w", err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("accel Z: %w", err)
	}

	gx, err := s.dev.GetRotationX()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("gyro X: %w", err)
	}
	gy, err := s.dev.GetRotationY()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("gyro Y: %w", err)
	}
	gz, err := s.dev.GetRotationZ()
	if err != nil {
		return imu.RawSample{}, fmt.Errorf("gyro Z: %w", err)
	}

	return imu.RawSample{
		Source: s.Name(),
		Ax:     float64(ax) / s.accelLSB,
		Ay:     float64(ay) / s.accelLSB,
		Az:     float64(az) / s.accelLSB,
		Gx:     float64(gx) / s.gyroLSB,
		Gy:     float64(gy) / s.gyroLSB,
		Gz:     float64(gz) / s.gyroLSB,
		Time:   t,
	}, nil
}
