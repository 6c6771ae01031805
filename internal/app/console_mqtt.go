package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/haptics"
	"github.com/relabs-tech/paddle_client/internal/sensors"
)

// FormatSampleMessage renders a TOPIC_SAMPLES payload.
func FormatSampleMessage(payload []byte) (string, error) {
	s, err := sensors.DecodeSample(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[IMU   ] src=%-8s ax=%7.3f ay=%7.3f az=%7.3f  gx=%8.2f gy=%8.2f gz=%8.2f",
		s.Source, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
	), nil
}

// FormatHapticMessage renders a TOPIC_HAPTIC payload.
func FormatHapticMessage(payload []byte) (string, error) {
	var e haptics.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return "", fmt.Errorf("haptic unmarshal error: %w", err)
	}
	return fmt.Sprintf("[HAPTIC] level=%d time=%s", e.Level, e.Time), nil
}

// RunConsoleMQTT prints the sample and haptic topics until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	lines := make(chan string, 64)
	subscribe := func(topic string, format func([]byte) (string, error)) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line, err := format(msg.Payload())
			if err != nil {
				log.Printf("console: %s: %v", topic, err)
				return
			}
			select {
			case lines <- line:
			default: // slow terminal, drop
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", topic)
		return nil
	}

	if err := subscribe(cfg.TopicSamples, FormatSampleMessage); err != nil {
		return err
	}
	if err := subscribe(cfg.TopicHaptic, FormatHapticMessage); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("console: shutting down")
			return nil
		case line := <-lines:
			fmt.Fprintln(out, line)
		}
	}
}
