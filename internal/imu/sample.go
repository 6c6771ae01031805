// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "time"

// RawSample is one instant of motion data as delivered by a sensor source.
//
// Acceleration is in the source's native units (m/s² for phone and remote
// sources, g for the MPU-9250). Angular rate is in °/s.
type RawSample struct {
	Source string `json:"source"` // "mpu9250", "serial", "mqtt", "mock"

	Ax float64 `json:"ax"` // linear acceleration
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // angular rate
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Time time.Time `json:"time"`
}
