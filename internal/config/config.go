package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// Config holds all application configuration values.
type Config struct {
	// Board server connection
	ServerAddress      string
	ProtocolMode       protocol.Mode
	DialTimeout        int // milliseconds
	ResponseTimeout    int // milliseconds, 0 disables
	MasterPushInterval int // milliseconds
	PingInterval       int // milliseconds, 0 disables

	// Signal pipeline
	SensorSource    string // "mpu9250", "serial", "mqtt", "mock"
	SampleInterval  int    // milliseconds
	SmoothingWindow int
	Gain            float64
	XMax            int
	YMax            int

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Serial IMU dongle
	SerialPort     string
	SerialBaudRate int

	// MQTT
	MQTTBroker   string
	MQTTClientID string

	// Topics
	TopicSamples string
	TopicHaptic  string

	// Haptic feedback: "log", "mqtt", "none"
	HapticSink string

	// Status server
	StatusServerPort   int // 0 disables
	StatusPushInterval int // milliseconds

	// Board simulator
	SimListenAddr   string
	SimPullInterval int // milliseconds
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		ProtocolMode:       protocol.ClientSlaveSync,
		DialTimeout:        10000,
		MasterPushInterval: 50,

		SensorSource:    "mock",
		SampleInterval:  16,
		SmoothingWindow: 5,
		Gain:            10,
		XMax:            127,
		YMax:            31,

		IMUSPIDevice: "/dev/spidev0.0",
		IMUCSPin:     "8",

		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,

		MQTTBroker:   "tcp://localhost:1883",
		TopicSamples: "paddle/imu",
		TopicHaptic:  "paddle/haptic",
		HapticSink:   "log",

		StatusServerPort:   8080,
		StatusPushInterval: 200,

		SimListenAddr:   ":8765",
		SimPullInterval: 100,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return FromMap(values)
}

// FromMap applies values over Default and validates the result.
func FromMap(values map[string]string) (*Config, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Default()
	for _, key := range keys {
		if err := cfg.setValue(key, strings.TrimSpace(values[key])); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "paddle-client-" + uuid.NewString()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func atoiRange(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

const maxMillis = 24 * 60 * 60 * 1000

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Board server connection
	case "SERVER_ADDRESS":
		c.ServerAddress = value
	case "PROTOCOL_MODE":
		mode, perr := protocol.ParseMode(value)
		if perr != nil {
			return fmt.Errorf("invalid PROTOCOL_MODE: %w", perr)
		}
		c.ProtocolMode = mode
	case "DIAL_TIMEOUT":
		c.DialTimeout, err = atoiRange(key, value, 1, maxMillis)
	case "RESPONSE_TIMEOUT":
		c.ResponseTimeout, err = atoiRange(key, value, 0, maxMillis)
	case "MASTER_PUSH_INTERVAL":
		c.MasterPushInterval, err = atoiRange(key, value, 1, maxMillis)
	case "PING_INTERVAL":
		c.PingInterval, err = atoiRange(key, value, 0, maxMillis)

	// Signal pipeline
	case "SENSOR_SOURCE":
		c.SensorSource = strings.ToLower(value)
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = atoiRange(key, value, 1, maxMillis)
	case "SMOOTHING_WINDOW":
		c.SmoothingWindow, err = atoiRange(key, value, 1, 1000)
	case "GAIN":
		gain, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			return fmt.Errorf("invalid GAIN %q: %w", value, perr)
		}
		if gain <= 0 {
			return fmt.Errorf("GAIN must be positive, got %g", gain)
		}
		c.Gain = gain
	case "X_MAX":
		c.XMax, err = atoiRange(key, value, 0, 1<<16)
	case "Y_MAX":
		c.YMax, err = atoiRange(key, value, 0, 1<<16)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		rangeVal, rerr := atoiRange(key, value, 0, 3)
		if rerr != nil {
			return fmt.Errorf("%w (0=±2g, 1=±4g, 2=±8g, 3=±16g)", rerr)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, rerr := atoiRange(key, value, 0, 3)
		if rerr != nil {
			return fmt.Errorf("%w (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s)", rerr)
		}
		c.IMUGyroRange = byte(rangeVal)

	// Serial IMU dongle
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, perr)
		}
		c.SerialBaudRate = rate

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value

	// Topics
	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_HAPTIC":
		c.TopicHaptic = value

	case "HAPTIC_SINK":
		c.HapticSink = strings.ToLower(value)

	// Status server
	case "STATUS_SERVER_PORT":
		c.StatusServerPort, err = atoiRange(key, value, 0, 65535)
	case "STATUS_PUSH_INTERVAL":
		c.StatusPushInterval, err = atoiRange(key, value, 1, maxMillis)

	// Board simulator
	case "SIM_LISTEN_ADDR":
		c.SimListenAddr = value
	case "SIM_PULL_INTERVAL":
		c.SimPullInterval, err = atoiRange(key, value, 1, maxMillis)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	switch c.SensorSource {
	case "mpu9250":
		if c.IMUSPIDevice == "" || c.IMUCSPin == "" {
			return fmt.Errorf("IMU_SPI_DEVICE and IMU_CS_PIN are required for SENSOR_SOURCE=mpu9250")
		}
	case "serial":
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SENSOR_SOURCE=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required for SENSOR_SOURCE=serial")
		}
	case "mqtt":
		if c.MQTTBroker == "" || c.TopicSamples == "" {
			return fmt.Errorf("MQTT_BROKER and TOPIC_SAMPLES are required for SENSOR_SOURCE=mqtt")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown SENSOR_SOURCE %q (mpu9250, serial, mqtt, mock)", c.SensorSource)
	}

	switch c.HapticSink {
	case "log", "none":
	case "mqtt":
		if c.MQTTBroker == "" || c.TopicHaptic == "" {
			return fmt.Errorf("MQTT_BROKER and TOPIC_HAPTIC are required for HAPTIC_SINK=mqtt")
		}
	default:
		return fmt.Errorf("unknown HAPTIC_SINK %q (log, mqtt, none)", c.HapticSink)
	}
	return nil
}

// Millis converts a millisecond config value to a time.Duration.
func Millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
