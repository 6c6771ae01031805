// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/paddle_client/internal/boardsim"
	"github.com/relabs-tech/paddle_client/internal/config"
)

// NewBoardSimHandler routes the simulated board at / and its counters at
// /api/stats.
func NewBoardSimHandler(sim *boardsim.Server) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, sim.Stats())
	}).Methods(http.MethodGet)
	r.Handle("/", sim)
	return r
}

// RunBoardSim serves a simulated board on SIM_LISTEN_ADDR until ctx is done.
func RunBoardSim(ctx context.Context, cfg *config.Config, opts boardsim.Options) error {
	if opts.PullInterval <= 0 {
		opts.PullInterval = config.Millis(cfg.SimPullInterval)
	}
	sim := boardsim.NewServer(opts, log.Default())
	return serve(ctx, cfg.SimListenAddr, NewBoardSimHandler(sim), "board simulator")
}
