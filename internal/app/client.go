// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/haptics"
	"github.com/relabs-tech/paddle_client/internal/imu"
	"github.com/relabs-tech/paddle_client/internal/link"
	"github.com/relabs-tech/paddle_client/internal/paddle"
	"github.com/relabs-tech/paddle_client/internal/sensors"
)

// Client wires a sensor source, the paddle tracker and the link engine.
type Client struct {
	cfg     *config.Config
	source  sensors.Source
	Tracker *paddle.Tracker
	Engine  *link.Engine
	Status  *StatusServer

	closeSink func()
}

// NewTracker builds the signal pipeline described by cfg, starting centred.
func NewTracker(cfg *config.Config) *paddle.Tracker {
	bounds := paddle.Bounds{XMax: cfg.XMax, YMax: cfg.YMax}
	return paddle.NewTracker(
		paddle.NewSmoother(cfg.SmoothingWindow),
		paddle.NewMapper(cfg.Gain, bounds),
		paddle.Coordinate{X: cfg.XMax / 2, Y: cfg.YMax / 2},
	)
}

// LinkOptions converts the connection settings of cfg.
func LinkOptions(cfg *config.Config) link.Options {
	return link.Options{
		DialTimeout:     config.Millis(cfg.DialTimeout),
		MasterInterval:  config.Millis(cfg.MasterPushInterval),
		ResponseTimeout: config.Millis(cfg.ResponseTimeout),
		PingInterval:    config.Millis(cfg.PingInterval),
	}
}

// OpenHaptics returns the sink selected by cfg.HapticSink and its closer.
func OpenHaptics(cfg *config.Config) (haptics.Sink, func(), error) {
	switch cfg.HapticSink {
	case "mqtt":
		s, err := haptics.NewMQTTSink(cfg.MQTTBroker, cfg.MQTTClientID+"-haptic", cfg.TopicHaptic)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "none":
		return haptics.Discard, func() {}, nil
	}
	return haptics.LogSink{Logger: log.Default()}, func() {}, nil
}

// NewClient checks src and builds the client around it.
func NewClient(cfg *config.Config, src sensors.Source) (*Client, error) {
	if err := sensors.CheckAvailable(src); err != nil {
		return nil, err
	}
	sink, closeSink, err := OpenHaptics(cfg)
	if err != nil {
		return nil, err
	}

	tracker := NewTracker(cfg)
	engine := link.New(LinkOptions(cfg), tracker, sink, log.Default())
	return &Client{
		cfg:       cfg,
		source:    src,
		Tracker:   tracker,
		Engine:    engine,
		Status:    NewStatusServer(engine.State(), tracker, config.Millis(cfg.StatusPushInterval)),
		closeSink: closeSink,
	}, nil
}

// Run ingests samples, connects and drives the protocol loop until ctx is done
// or any part fails. Cancelling ctx stops the loop with the kill exchange.
func (c *Client) Run(ctx context.Context) error {
	defer c.closeSink()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.source.Run(gctx, func(s imu.RawSample) {
			c.Tracker.Ingest(s)
		})
	})

	if c.cfg.StatusServerPort > 0 {
		g.Go(func() error {
			return serve(gctx, fmt.Sprintf(":%d", c.cfg.StatusServerPort), c.Status, "status server")
		})
	}

	g.Go(func() error {
		// the session ending ends ingestion too
		defer cancel()
		if err := c.Engine.Connect(gctx, c.cfg.ServerAddress, c.cfg.ProtocolMode); err != nil {
			return err
		}
		log.Printf("client: %s session established with %s", c.cfg.ProtocolMode, c.cfg.ServerAddress)
		return c.Engine.Run(gctx)
	})

	return g.Wait()
}

// Stop ends the session with the kill exchange; Run then returns.
func (c *Client) Stop() {
	c.Engine.Stop()
}

// RunClient opens the configured sensor source and runs a client on it.
func RunClient(ctx context.Context, cfg *config.Config) error {
	src, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	c, err := NewClient(cfg, src)
	if err != nil {
		return err
	}
	return c.Run(ctx)
}
