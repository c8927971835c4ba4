// feecycle runs the randomness-driven fee schedule: the ledger node, the
// off-chain worker and the administrative commands that talk to them.
package main

import (
	"fmt"
	"os"

	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/internal/flags"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "feecycle"

// Git SHA1 commit hash of the release (set via linker flags)
var (
	gitCommit = ""
	gitDate   = ""
)

var app = flags.NewApp(gitCommit, gitDate, "the randomness-driven transfer fee schedule")

func init() {
	app.Commands = []*cli.Command{
		nodeCommand,
		workerCommand,
		initCommand,
		collectCommand,
		inspectCommand,
		keygenCommand,
		dumpConfigCommand,
		versionCommand,
	}
	app.Flags = flags.Merge(utils.LoggingFlags, []cli.Flag{utils.ConfigFileFlag})
	app.Before = func(ctx *cli.Context) error {
		utils.SetupLogging(ctx.Int(utils.VerbosityFlag.Name), ctx.Bool(utils.LogJSONFlag.Name))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
