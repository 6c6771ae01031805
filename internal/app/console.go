// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/paddle_client/internal/config"
	"github.com/relabs-tech/paddle_client/internal/imu"
	"github.com/relabs-tech/paddle_client/internal/paddle"
	"github.com/relabs-tech/paddle_client/internal/sensors"
)

// FormatTick renders one console line.
func FormatTick(c paddle.Coordinate, s imu.RawSample) string {
	return fmt.Sprintf(
		"X=%3d  Y=%3d  ax=%7.3f ay=%7.3f az=%7.3f  gx=%8.2f gy=%8.2f gz=%8.2f",
		c.X, c.Y, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
	)
}

// RunConsole runs the signal pipeline without a board and prints the paddle
// coordinate every STATUS_PUSH_INTERVAL.
func RunConsole(ctx context.Context, cfg *config.Config, out io.Writer) error {
	src, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	return runConsole(ctx, cfg, src, out)
}

func runConsole(ctx context.Context, cfg *config.Config, src sensors.Source, out io.Writer) error {
	if err := sensors.CheckAvailable(src); err != nil {
		return err
	}
	tracker := NewTracker(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return src.Run(gctx, func(s imu.RawSample) { tracker.Ingest(s) })
	})
	g.Go(func() error {
		ticker := time.NewTicker(config.Millis(cfg.StatusPushInterval))
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if tracker.Ticks() == 0 {
					continue
				}
				fmt.Fprintln(out, FormatTick(tracker.Coordinate(), tracker.LastSample()))
			}
		}
	})
	return g.Wait()
}
