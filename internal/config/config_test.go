package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paddle.config")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# board server
SERVER_ADDRESS=ws://192.168.0.101:8080
PROTOCOL_MODE=client-master
MASTER_PUSH_INTERVAL=20
RESPONSE_TIMEOUT=1500

SENSOR_SOURCE=serial
SERIAL_PORT=/dev/ttyACM0
SERIAL_BAUD_RATE=57600
SMOOTHING_WINDOW=8
GAIN=12.5
X_MAX=255
Y_MAX=63
IMU_ACCEL_RANGE=2

MQTT_CLIENT_ID="paddle-7"
HAPTIC_SINK=mqtt
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddress != "ws://192.168.0.101:8080" {
		t.Errorf("ServerAddress = %q", cfg.ServerAddress)
	}
	if cfg.ProtocolMode != protocol.ClientMaster {
		t.Errorf("ProtocolMode = %s", cfg.ProtocolMode)
	}
	if cfg.MasterPushInterval != 20 || cfg.ResponseTimeout != 1500 {
		t.Errorf("timing = %d/%d", cfg.MasterPushInterval, cfg.ResponseTimeout)
	}
	if cfg.SensorSource != "serial" || cfg.SerialPort != "/dev/ttyACM0" || cfg.SerialBaudRate != 57600 {
		t.Errorf("serial = %q %q %d", cfg.SensorSource, cfg.SerialPort, cfg.SerialBaudRate)
	}
	if cfg.SmoothingWindow != 8 || cfg.Gain != 12.5 || cfg.XMax != 255 || cfg.YMax != 63 {
		t.Errorf("pipeline = %d %g %d %d", cfg.SmoothingWindow, cfg.Gain, cfg.XMax, cfg.YMax)
	}
	if cfg.IMUAccelRange != 2 {
		t.Errorf("IMUAccelRange = %d", cfg.IMUAccelRange)
	}
	if cfg.MQTTClientID != "paddle-7" {
		t.Errorf("MQTTClientID = %q", cfg.MQTTClientID)
	}
	// untouched keys keep their defaults
	if cfg.SampleInterval != 16 || cfg.TopicHaptic != "paddle/haptic" || cfg.DialTimeout != 10000 {
		t.Errorf("defaults lost: %d %q %d", cfg.SampleInterval, cfg.TopicHaptic, cfg.DialTimeout)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing set\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProtocolMode != protocol.ClientSlaveSync {
		t.Errorf("ProtocolMode = %s", cfg.ProtocolMode)
	}
	if cfg.SensorSource != "mock" || cfg.SmoothingWindow != 5 || cfg.Gain != 10 {
		t.Errorf("pipeline defaults = %q %d %g", cfg.SensorSource, cfg.SmoothingWindow, cfg.Gain)
	}
	if cfg.XMax != 127 || cfg.YMax != 31 {
		t.Errorf("bounds = %dx%d", cfg.XMax, cfg.YMax)
	}
	if !strings.HasPrefix(cfg.MQTTClientID, "paddle-client-") {
		t.Errorf("MQTTClientID = %q", cfg.MQTTClientID)
	}
}

func TestLoadGeneratesDistinctClientIDs(t *testing.T) {
	path := writeConfig(t, "")
	a, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.MQTTClientID == b.MQTTClientID {
		t.Fatalf("client ids collide: %q", a.MQTTClientID)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "NOT_A_KEY=1\n", "unknown config key"},
		{"bad mode", "PROTOCOL_MODE=client-broadcast\n", "PROTOCOL_MODE"},
		{"accel range", "IMU_ACCEL_RANGE=4\n", "IMU_ACCEL_RANGE must be 0-3"},
		{"gyro range", "IMU_GYRO_RANGE=x\n", "invalid IMU_GYRO_RANGE"},
		{"window", "SMOOTHING_WINDOW=0\n", "SMOOTHING_WINDOW"},
		{"gain", "GAIN=-1\n", "GAIN must be positive"},
		{"sensor", "SENSOR_SOURCE=camera\n", "unknown SENSOR_SOURCE"},
		{"serial port", "SENSOR_SOURCE=serial\nSERIAL_PORT=\n", "SERIAL_PORT is required"},
		{"haptic", "HAPTIC_SINK=buzzer\n", "unknown HAPTIC_SINK"},
		{"status port", "STATUS_SERVER_PORT=70000\n", "STATUS_SERVER_PORT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("Load succeeded")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.config")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}

func TestMillis(t *testing.T) {
	if got := Millis(250); got != 250*time.Millisecond {
		t.Fatalf("Millis(250) = %s", got)
	}
}
