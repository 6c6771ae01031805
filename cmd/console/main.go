// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/paddle_client/internal/app"
	"github.com/relabs-tech/paddle_client/internal/config"
)

func main() {
	configPath := flag.String("config", "./paddle_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting paddle console (sensor → coordinate, no board)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsole(ctx, config.Get(), os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
