package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/internal/flags"
	"github.com/tos-network/feecycle/ledger"
	"github.com/tos-network/feecycle/log"
	"github.com/urfave/cli/v2"
)

var nodeCommand = &cli.Command{
	Action: runNode,
	Name:   "node",
	Usage:  "Run the ledger node and its HTTP API",
	Flags:  flags.Merge(utils.LedgerFlags, utils.APIFlags),
	Description: `
Runs the ledger node. On an empty database the genesis from the config file,
or the developer genesis built from --genesis.payer and --genesis.signer, is
written first.`,
}

func runNode(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetLedgerConfig(ctx, &cfg.Ledger)
	utils.SetGenesisConfig(ctx, &cfg.Ledger)
	utils.SetAPIConfig(ctx, &cfg.API)

	node, err := ledger.New(cfg.Ledger)
	if err != nil {
		utils.Fatalf("Failed to open ledger: %v", err)
	}
	node.Start()

	srv := feeapi.NewServer(node, cfg.API)
	if err := srv.Start(); err != nil {
		node.Stop()
		utils.Fatalf("Failed to start API: %v", err)
	}

	sigctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigctx.Done()
	log.Info("Got interrupt, shutting down...")

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdown); err != nil {
		log.Warn("API shutdown failed", "err", err)
	}
	return node.Stop()
}
