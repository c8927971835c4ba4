package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/internal/flags"
	"github.com/tos-network/feecycle/ledger"
	"github.com/tos-network/feecycle/worker"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "",
	Flags:       flags.Merge(utils.LedgerFlags, utils.APIFlags, utils.WorkerFlags),
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		if deprecated(id) {
			return nil
		}
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type feecycleConfig struct {
	Ledger ledger.Config
	API    feeapi.Config
	Worker worker.Config
}

func defaultConfig() feecycleConfig {
	return feecycleConfig{
		Ledger: ledger.Defaults,
		API:    feeapi.Defaults,
		Worker: worker.Defaults,
	}
}

func loadConfig(file string, cfg *feecycleConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, and applies the flags of the
// running command on top of it.
func makeConfig(ctx *cli.Context) feecycleConfig {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	return cfg
}

func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	utils.SetLedgerConfig(ctx, &cfg.Ledger)
	if ctx.IsSet(utils.GenesisPayerFlag.Name) || ctx.IsSet(utils.GenesisSignerFlag.Name) {
		utils.SetGenesisConfig(ctx, &cfg.Ledger)
	}
	utils.SetAPIConfig(ctx, &cfg.API)
	utils.SetWorkerConfig(ctx, &cfg.Worker)

	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.Write(out)
	return nil
}

func deprecated(field string) bool {
	return false
}
