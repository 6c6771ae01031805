// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/paddle_client/internal/imu"
)

// MQTTSource receives JSON RawSamples from a topic, as published by
// cmd/sample_producer.
type MQTTSource struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSource connects to broker. A broker that cannot be reached makes
// the sensor unavailable.
func NewMQTTSource(broker, clientID, topic string) (*MQTTSource, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%w: mqtt %s: %w", ErrSensorUnavailable, broker, token.Error())
	}
	log.Printf("mqtt source: connected to MQTT broker at %s", broker)
	return &MQTTSource{client: client, topic: topic}, nil
}

// DecodeSample parses one message payload.
func DecodeSample(payload []byte) (imu.RawSample, error) {
	var s imu.RawSample
	if err := json.Unmarshal(payload, &s); err != nil {
		return imu.RawSample{}, fmt.Errorf("mqtt source: sample unmarshal: %w", err)
	}
	if s.Source == "" {
		s.Source = "mqtt"
	}
	return s, nil
}

func (s *MQTTSource) Name() string { return "mqtt" }

func (s *MQTTSource) Capabilities() Capabilities {
	return Capabilities{Accelerometer: true, Gyroscope: true}
}

func (s *MQTTSource) Run(ctx context.Context, fn SampleFunc) error {
	token := s.client.Subscribe(s.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := DecodeSample(msg.Payload())
		if err != nil {
			log.Printf("%v", err)
			return
		}
		fn(sample)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt source: subscribe %s: %w", s.topic, token.Error())
	}
	log.Printf("mqtt source: subscribed to %s", s.topic)

	<-ctx.Done()
	if t := s.client.Unsubscribe(s.topic); t.Wait() && t.Error() != nil {
		log.Printf("mqtt source: unsubscribe %s: %v", s.topic, t.Error())
	}
	return nil
}

func (s *MQTTSource) Close() error {
	s.client.Disconnect(250)
	return nil
}
