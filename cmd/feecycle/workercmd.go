package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/feeclient"
	"github.com/tos-network/feecycle/randomness"
	"github.com/tos-network/feecycle/worker"
	"github.com/urfave/cli/v2"
)

var workerCommand = &cli.Command{
	Action: runWorker,
	Name:   "worker",
	Usage:  "Answer due randomness requests of a ledger node",
	Flags:  utils.WorkerFlags,
	Description: `
Polls the node for randomness requests that are due, samples a value for each
and submits the callback signed with the enclave key (--key).`,
}

func runWorker(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetWorkerConfig(ctx, &cfg.Worker)
	key := utils.LoadKey(ctx, cfg.Worker.KeyFile)

	client := feeclient.Dial(cfg.Worker.Node)
	svc, err := worker.New(cfg.Worker, client, randomness.NewSampler(randomness.SystemEntropy), key)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return svc.Run(sigctx)
}
