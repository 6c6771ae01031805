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
	"github.com/relabs-tech/paddle_client/internal/boardsim"
	"github.com/relabs-tech/paddle_client/internal/config"
)

func main() {
	configPath := flag.String("config", "./paddle_config.txt", "path to configuration file")
	hapticEvery := flag.Int("haptic-every", 5, "tag every Nth sync pull with a haptic level (0 disables)")
	triggerEvery := flag.Int("trigger-every", 0, "send a push trigger after every N master pushes (0 disables)")
	reject := flag.Bool("reject", false, "answer every handshake with the server error code")
	flag.Parse()

	log.Println("starting paddle board simulator")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := boardsim.Options{
		HapticEvery:  *hapticEvery,
		TriggerEvery: *triggerEvery,
		Reject:       *reject,
	}
	if err := app.RunBoardSim(ctx, config.Get(), opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
