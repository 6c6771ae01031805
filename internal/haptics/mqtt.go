// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package haptics

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/paddle_client/internal/protocol"
)

// Event is the JSON payload published for every triggered level.
type Event struct {
	Level protocol.Level `json:"level"`
	Time  string         `json:"time"` // RFC3339
}

// MQTTSink publishes haptic events to a topic, for a motor driver that
// lives on another process or board.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	now    func() time.Time
}

// NewMQTTSink connects to broker and returns a sink publishing to topic.
func NewMQTTSink(broker, clientID, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("haptics: MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("haptics: connected to MQTT broker at %s, publishing to %s", broker, topic)
	return &MQTTSink{client: client, topic: topic, now: time.Now}, nil
}

// EncodeEvent builds the payload for level at t.
func EncodeEvent(level protocol.Level, t time.Time) ([]byte, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("haptic level %d out of range 0-%d", level, protocol.MaxLevel)
	}
	return json.Marshal(Event{Level: level, Time: t.Format(time.RFC3339)})
}

func (s *MQTTSink) Trigger(level protocol.Level) error {
	payload, err := EncodeEvent(level, s.now())
	if err != nil {
		return err
	}
	if token := s.client.Publish(s.topic, 0, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("haptics: MQTT publish: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
