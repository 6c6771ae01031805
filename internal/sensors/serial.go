// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/paddle_client/internal/imu"
)

// TypeMOT is the sentence type streamed by the IMU dongle:
//
//	$IIMOT,ax,ay,az,gx,gy,gz*hh
const TypeMOT = "MOT"

// MOT is one motion sentence.
type MOT struct {
	nmea.BaseSentence
	Ax, Ay, Az float64
	Gx, Gy, Gz float64
}

func init() {
	nmea.MustRegisterParser(TypeMOT, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		m := MOT{
			BaseSentence: s,
			Ax:           p.Float64(0, "ax"),
			Ay:           p.Float64(1, "ay"),
			Az:           p.Float64(2, "az"),
			Gx:           p.Float64(3, "gx"),
			Gy:           p.Float64(4, "gy"),
			Gz:           p.Float64(5, "gz"),
		}
		return m, p.Err()
	})
}

var errNotMotion = errors.New("not a motion sentence")

// ParseLine decodes one checksummed MOT sentence.
func ParseLine(line string) (imu.RawSample, error) {
	sentence, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return imu.RawSample{}, err
	}
	m, ok := sentence.(MOT)
	if !ok {
		return imu.RawSample{}, fmt.Errorf("%w: %s", errNotMotion, sentence.DataType())
	}
	return imu.RawSample{
		Source: "serial",
		Ax:     m.Ax,
		Ay:     m.Ay,
		Az:     m.Az,
		Gx:     m.Gx,
		Gy:     m.Gy,
		Gz:     m.Gz,
	}, nil
}

// SerialSource reads MOT sentences from a serial port.
type SerialSource struct {
	port      io.ReadCloser
	now       func() time.Time
	closeOnce sync.Once
}

// OpenSerialSource opens portName 8N1 at baud.
func OpenSerialSource(portName string, baud int) (*SerialSource, error) {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: serial %s: %w", ErrSensorUnavailable, portName, err)
	}
	log.Printf("serial: IMU port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)
	return NewSerialSource(port), nil
}

// NewSerialSource reads sentences from an already open stream.
func NewSerialSource(r io.ReadCloser) *SerialSource {
	return &SerialSource{port: r, now: time.Now}
}

func (s *SerialSource) Name() string { return "serial" }

func (s *SerialSource) Capabilities() Capabilities {
	return Capabilities{Accelerometer: true, Gyroscope: true}
}

// Run returns ErrSensorUnavailable when the stream ends.
func (s *SerialSource) Run(ctx context.Context, fn SampleFunc) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-done:
		}
	}()

	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "$") {
			// partial or corrupted sentences are dropped
			if sample, perr := ParseLine(line); perr == nil {
				sample.Time = s.now()
				fn(sample)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: serial: stream ended", ErrSensorUnavailable)
			}
			return fmt.Errorf("serial: read: %w", err)
		}
	}
}

func (s *SerialSource) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.port.Close() })
	return err
}
