package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/feeclient"
	"github.com/tos-network/feecycle/schedule"
	"github.com/urfave/cli/v2"
)

var (
	fundingFlag = &cli.Uint64Flag{
		Name:  "funding",
		Usage: "Amount moved from the payer to the schedule to pay for later requests",
	}
	sourcesFlag = &cli.StringFlag{
		Name:  "from",
		Usage: "Comma separated token accounts to collect withheld fees from (default: the mint)",
	}
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the raw structures instead of JSON",
	}
)

var (
	initCommand = &cli.Command{
		Action: initSchedule,
		Name:   "init",
		Usage:  "Create the fee schedule and arm the first randomness request",
		Flags:  []cli.Flag{utils.NodeURLFlag, utils.KeyFileFlag, fundingFlag},
		Description: `
Sends the schedule_init instruction signed by the payer key (--key). The
payer pays the first request fee and the --funding amount.`,
	}
	collectCommand = &cli.Command{
		Action: collectAndBurn,
		Name:   "collect",
		Usage:  "Withdraw withheld transfer fees into the schedule and burn them",
		Flags:  []cli.Flag{utils.NodeURLFlag, sourcesFlag},
	}
	inspectCommand = &cli.Command{
		Action: inspect,
		Name:   "inspect",
		Usage:  "Print the schedule, the mint and the due requests",
		Flags:  []cli.Flag{utils.NodeURLFlag, dumpFlag},
	}
)

func initSchedule(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetWorkerConfig(ctx, &cfg.Worker)
	key := utils.LoadKey(ctx, "")
	client := feeclient.Dial(cfg.Worker.Node)
	bg := context.Background()

	chainID, err := client.ChainID(bg)
	if err != nil {
		return err
	}
	acc, err := client.Accounts(bg)
	if err != nil {
		return err
	}
	payer := crypto.PubkeyToAddress(key)
	ix, err := schedule.NewInitInstruction(acc.Mint, payer, acc.Queue, acc.Function, ctx.Uint64(fundingFlag.Name))
	if err != nil {
		return err
	}
	if ix.Nonce, err = client.Nonce(bg, payer); err != nil {
		return err
	}
	if err := client.SubmitInstruction(bg, types.SignInstruction(chainID, ix, key)); err != nil {
		return err
	}
	rec, err := client.Schedule(bg)
	if err != nil {
		return err
	}
	fmt.Printf("Schedule %s initialized, first request %s due at slot %d\n", rec.Address, rec.ActiveRequest, rec.NextUpdateDueAt)
	return nil
}

func collectAndBurn(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetWorkerConfig(ctx, &cfg.Worker)
	client := feeclient.Dial(cfg.Worker.Node)
	bg := context.Background()

	chainID, err := client.ChainID(bg)
	if err != nil {
		return err
	}
	acc, err := client.Accounts(bg)
	if err != nil {
		return err
	}
	var ix *types.Instruction
	if ctx.IsSet(sourcesFlag.Name) {
		var sources []common.Address
		for _, s := range utils.SplitAndTrim(ctx.String(sourcesFlag.Name)) {
			addr, err := common.ParseAddress(s)
			if err != nil {
				return err
			}
			sources = append(sources, addr)
		}
		ix, err = schedule.NewCollectAndBurnFromAccountsInstruction(acc.Mint, sources)
	} else {
		ix, err = schedule.NewCollectAndBurnFromMintInstruction(acc.Mint)
	}
	if err != nil {
		return err
	}
	// Collection is permissionless; the schedule authorizes itself.
	if err := client.SubmitInstruction(bg, types.SignInstruction(chainID, ix)); err != nil {
		return err
	}
	mint, err := client.Mint(bg)
	if err != nil {
		return err
	}
	fmt.Printf("Collected and burned, supply now %s\n", mint.Supply)
	return nil
}

type inspection struct {
	Schedule interface{} `json:"schedule"`
	Mint     interface{} `json:"mint"`
	Pending  interface{} `json:"pending"`
}

func inspect(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetWorkerConfig(ctx, &cfg.Worker)
	client := feeclient.Dial(cfg.Worker.Node)
	bg := context.Background()

	rec, err := client.Schedule(bg)
	if err != nil {
		return err
	}
	mint, err := client.Mint(bg)
	if err != nil {
		return err
	}
	pending, err := client.PendingRequests(bg)
	if err != nil {
		return err
	}
	if ctx.Bool(dumpFlag.Name) {
		spew.Fdump(os.Stdout, rec, mint, pending)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(&inspection{Schedule: rec, Mint: mint, Pending: pending})
}
