package main

import (
	"fmt"
	"os"

	"github.com/tos-network/feecycle/cmd/utils"
	"github.com/tos-network/feecycle/crypto"
	"github.com/urfave/cli/v2"
)

var keygenCommand = &cli.Command{
	Action:    keygen,
	Name:      "keygen",
	Usage:     "Generate a new ed25519 signing key",
	ArgsUsage: "<keyfile>",
}

func keygen(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires a key file argument.")
	}
	file := ctx.Args().First()
	if _, err := os.Stat(file); err == nil {
		utils.Fatalf("Key file already exists at %s.", file)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveEd25519(file, key); err != nil {
		return err
	}
	fmt.Println("Address:", crypto.PubkeyToAddress(key).Hex())
	return nil
}
