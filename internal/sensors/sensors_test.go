// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/imu"
)

type fakeSource struct {
	caps Capabilities
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Capabilities() Capabilities { return f.caps }

func (f fakeSource) Run(ctx context.Context, _ SampleFunc) error {
	<-ctx.Done()
	return nil
}

func (f fakeSource) Close() error { return nil }

func TestCheckAvailable(t *testing.T) {
	cases := []struct {
		caps Capabilities
		ok   bool
	}{
		{Capabilities{Accelerometer: true, Gyroscope: true}, true},
		{Capabilities{Accelerometer: true}, false},
		{Capabilities{Gyroscope: true}, false},
		{Capabilities{}, false},
	}
	for _, tc := range cases {
		err := CheckAvailable(fakeSource{caps: tc.caps})
		if tc.ok && err != nil {
			t.Errorf("CheckAvailable(%+v) = %v", tc.caps, err)
		}
		if !tc.ok && !errors.Is(err, ErrSensorUnavailable) {
			t.Errorf("CheckAvailable(%+v) = %v, want ErrSensorUnavailable", tc.caps, err)
		}
	}
	if err := CheckAvailable(nil); !errors.Is(err, ErrSensorUnavailable) {
		t.Errorf("CheckAvailable(nil) = %v", err)
	}
}

func TestOpenUnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.SensorSource = "camera"
	if _, err := Open(cfg); !errors.Is(err, ErrSensorUnavailable) {
		t.Fatalf("Open = %v, want ErrSensorUnavailable", err)
	}
}

func TestOpenMock(t *testing.T) {
	s, err := Open(config.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Name() != "mock" {
		t.Fatalf("Name = %q", s.Name())
	}
	if err := CheckAvailable(s); err != nil {
		t.Fatalf("CheckAvailable: %v", err)
	}
}

func TestScales(t *testing.T) {
	accel := []float64{16384, 8192, 4096, 2048}
	gyro := []float64{131, 65.5, 32.75, 16.375}
	for r := byte(0); r < 4; r++ {
		if got := AccelLSB(r); got != accel[r] {
			t.Errorf("AccelLSB(%d) = %g, want %g", r, got, accel[r])
		}
		if got := GyroLSB(r); got != gyro[r] {
			t.Errorf("GyroLSB(%d) = %g, want %g", r, got, gyro[r])
		}
	}
}

func sentence(body string) string {
	return "$" + body + "*" + nmea.Checksum(body)
}

func TestParseLine(t *testing.T) {
	s, err := ParseLine(sentence("IIMOT,0.12,-0.50,9.81,1.5,-2.25,0") + "\r\n")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	want := imu.RawSample{Source: "serial", Ax: 0.12, Ay: -0.5, Az: 9.81, Gx: 1.5, Gy: -2.25, Gz: 0}
	if s != want {
		t.Fatalf("ParseLine = %+v, want %+v", s, want)
	}
}

func TestParseLineErrors(t *testing.T) {
	cases := map[string]string{
		"bad checksum": "$IIMOT,1,2,3,4,5,7*" + nmea.Checksum("IIMOT,1,2,3,4,5,6"),
		"bad field":    sentence("IIMOT,1,x,3,4,5,6"),
		"other type":   sentence("GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W"),
		"not nmea":     "hello",
	}
	for name, line := range cases {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("%s: ParseLine(%q) succeeded", name, line)
		}
	}
}

func TestSerialSourceRun(t *testing.T) {
	stream := strings.Join([]string{
		sentence("IIMOT,0.1,0.2,0.3,1,2,3"),
		"garbage",
		"$IIMOT,1,2", // truncated
		sentence("IIMOT,-0.1,-0.2,-0.3,-1,-2,-3"),
		"",
	}, "\r\n")

	src := NewSerialSource(io.NopCloser(strings.NewReader(stream)))
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src.now = func() time.Time { return stamp }

	var got []imu.RawSample
	err := src.Run(context.Background(), func(s imu.RawSample) { got = append(got, s) })
	if !errors.Is(err, ErrSensorUnavailable) {
		t.Fatalf("Run = %v, want ErrSensorUnavailable at end of stream", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if got[0].Ax != 0.1 || got[1].Gz != -3 || !got[1].Time.Equal(stamp) {
		t.Fatalf("samples = %+v", got)
	}
}

// blockingReader blocks until closed, like an idle serial port.
type blockingReader struct {
	once   sync.Once
	closed chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.closed
	return 0, io.ErrClosedPipe
}

func (b *blockingReader) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func TestSerialSourceStopsOnCancel(t *testing.T) {
	src := NewSerialSource(&blockingReader{closed: make(chan struct{})})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- src.Run(ctx, func(imu.RawSample) {}) }()
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDecodeSample(t *testing.T) {
	s, err := DecodeSample([]byte(`{"ax":0.5,"ay":-0.25,"az":1,"gx":3,"gy":2,"gz":1}`))
	if err != nil {
		t.Fatalf("DecodeSample: %v", err)
	}
	if s.Source != "mqtt" || s.Ax != 0.5 || s.Ay != -0.25 || s.Gx != 3 {
		t.Fatalf("DecodeSample = %+v", s)
	}
	if s, _ := DecodeSample([]byte(`{"source":"mpu9250"}`)); s.Source != "mpu9250" {
		t.Fatalf("source overwritten: %q", s.Source)
	}
	if _, err := DecodeSample([]byte(`{"ax":`)); err == nil {
		t.Fatal("DecodeSample accepted truncated JSON")
	}
}

func TestMockSample(t *testing.T) {
	s := MockSample(0)
	if s.Ax != 0 || s.Ay != 0.3 || s.Gx != 20 {
		t.Fatalf("MockSample(0) = %+v", s)
	}
	s = MockSample(math.Pi / 2)
	if math.Abs(s.Ax-0.4) > 1e-9 {
		t.Fatalf("MockSample(pi/2).Ax = %g", s.Ax)
	}
}

func TestMockSourceRun(t *testing.T) {
	m := NewMockSource(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	samples := make(chan imu.RawSample, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- m.Run(ctx, func(s imu.RawSample) {
			select {
			case samples <- s:
			default:
			}
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case s := <-samples:
			if s.Source != "mock" || s.Time.IsZero() {
				t.Fatalf("sample = %+v", s)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no samples from mock source")
		}
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Run = %v", err)
	}
}
