package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/imu"
	"github.com/relabs-tech/paddle_client/internal/sensors"
)

// RunSampleProducer reads the configured sensor and publishes every sample
// as JSON to TOPIC_SAMPLES, for clients running with SENSOR_SOURCE=mqtt.
func RunSampleProducer(ctx context.Context, cfg *config.Config) error {
	if cfg.SensorSource == "mqtt" {
		return fmt.Errorf("sample producer: SENSOR_SOURCE=mqtt would republish its own input")
	}
	log.Println("starting paddle sample producer")

	src, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := sensors.CheckAvailable(src); err != nil {
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-producer")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("connected to MQTT, publishing %s samples to %s", src.Name(), cfg.TopicSamples)

	var published, failed atomic.Uint64
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return src.Run(gctx, func(s imu.RawSample) {
			payload, err := json.Marshal(s)
			if err != nil {
				log.Printf("sample marshal error: %v", err)
				failed.Add(1)
				return
			}
			if token := client.Publish(cfg.TopicSamples, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (%s): %v", cfg.TopicSamples, token.Error())
				failed.Add(1)
				return
			}
			published.Add(1)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case t := <-ticker.C:
				log.Printf("%s tick: published=%d failed=%d", t.Format(time.RFC3339), published.Load(), failed.Load())
			}
		}
	})

	return g.Wait()
}
