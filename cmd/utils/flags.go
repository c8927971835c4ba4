package utils

import (
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/crypto/ed25519"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/internal/flags"
	"github.com/tos-network/feecycle/ledger"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/worker"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value:    int(log.LvlInfo),
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}

	// Ledger settings
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the state database (empty = in memory)",
		Category: flags.LedgerCategory,
	}
	DatabaseCacheFlag = &cli.IntFlag{
		Name:     "cache.database",
		Usage:    "Megabytes of memory allocated to the state database",
		Value:    ledger.Defaults.DatabaseCache,
		Category: flags.LedgerCategory,
	}
	StateCacheFlag = &cli.IntFlag{
		Name:     "cache.state",
		Usage:    "Megabytes of memory allocated to clean storage caching",
		Value:    ledger.Defaults.StateCache,
		Category: flags.LedgerCategory,
	}
	ManualSlotsFlag = &cli.BoolFlag{
		Name:     "slots.manual",
		Usage:    "Disable the slot clock",
		Category: flags.LedgerCategory,
	}

	// Genesis settings
	GenesisPayerFlag = &cli.StringFlag{
		Name:     "genesis.payer",
		Usage:    "Address funded at genesis; it also mints the token and owns the attestation queue",
		Category: flags.GenesisCategory,
	}
	GenesisSignerFlag = &cli.StringFlag{
		Name:     "genesis.signer",
		Usage:    "Enclave signer address answering randomness requests",
		Category: flags.GenesisCategory,
	}
	GenesisRequestFeeFlag = &cli.Uint64Flag{
		Name:     "genesis.requestfee",
		Usage:    "Fee charged by the attestation queue per request",
		Value:    params.DefaultRequestFee,
		Category: flags.GenesisCategory,
	}

	// API settings
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP API listening interface",
		Value:    feeapi.Defaults.Host,
		Category: flags.APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP API listening port",
		Value:    feeapi.Defaults.Port,
		Category: flags.APICategory,
	}
	HTTPCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
		Category: flags.APICategory,
	}

	// Worker and client settings
	NodeURLFlag = &cli.StringFlag{
		Name:     "node",
		Usage:    "Ledger node API endpoint",
		Value:    worker.Defaults.Node,
		Category: flags.WorkerCategory,
	}
	KeyFileFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "File holding the hex encoded ed25519 seed used for signing",
		Category: flags.AccountCategory,
	}
	PollIntervalFlag = &cli.DurationFlag{
		Name:     "poll.interval",
		Usage:    "Minimum time between two polls of the node",
		Value:    worker.Defaults.PollInterval,
		Category: flags.WorkerCategory,
	}
	SeenCacheFlag = &cli.IntFlag{
		Name:     "poll.seen",
		Usage:    "Number of serviced requests remembered",
		Value:    worker.Defaults.SeenCacheSize,
		Category: flags.WorkerCategory,
	}
)

var (
	// LoggingFlags is the flag group shared by every command.
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogJSONFlag,
	}

	// LedgerFlags configure the ledger node.
	LedgerFlags = []cli.Flag{
		DataDirFlag,
		DatabaseCacheFlag,
		StateCacheFlag,
		ManualSlotsFlag,
		GenesisPayerFlag,
		GenesisSignerFlag,
		GenesisRequestFeeFlag,
	}

	// APIFlags configure the HTTP API.
	APIFlags = []cli.Flag{
		HTTPListenAddrFlag,
		HTTPPortFlag,
		HTTPCORSDomainFlag,
	}

	// WorkerFlags configure the worker service.
	WorkerFlags = []cli.Flag{
		NodeURLFlag,
		KeyFileFlag,
		PollIntervalFlag,
		SeenCacheFlag,
	}
)

// SetLedgerConfig applies ledger-related command line flags to the config.
func SetLedgerConfig(ctx *cli.Context, cfg *ledger.Config) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.String(DataDirFlag.Name)
	}
	if ctx.IsSet(DatabaseCacheFlag.Name) {
		cfg.DatabaseCache = ctx.Int(DatabaseCacheFlag.Name)
	}
	if ctx.IsSet(StateCacheFlag.Name) {
		cfg.StateCache = ctx.Int(StateCacheFlag.Name)
	}
	if ctx.IsSet(ManualSlotsFlag.Name) {
		cfg.ManualSlots = ctx.Bool(ManualSlotsFlag.Name)
	}
}

// SetGenesisConfig builds the genesis from flags unless the config file
// already carries one and no genesis flag overrides it.
func SetGenesisConfig(ctx *cli.Context, cfg *ledger.Config) {
	if cfg.Genesis == nil || ctx.IsSet(GenesisPayerFlag.Name) || ctx.IsSet(GenesisSignerFlag.Name) {
		cfg.Genesis = MakeGenesis(ctx)
	}
}

// MakeGenesis builds the developer genesis from the genesis flags.
func MakeGenesis(ctx *cli.Context) *core.Genesis {
	payer := mustAddress(ctx, GenesisPayerFlag)
	signer := mustAddress(ctx, GenesisSignerFlag)
	g := core.DeveloperGenesis(payer, signer)
	g.RequestFee = ctx.Uint64(GenesisRequestFeeFlag.Name)
	return g
}

func mustAddress(ctx *cli.Context, f *cli.StringFlag) common.Address {
	if !ctx.IsSet(f.Name) {
		Fatalf("Missing --%s (or a genesis section in the config file)", f.Name)
	}
	addr, err := common.ParseAddress(ctx.String(f.Name))
	if err != nil {
		Fatalf("Invalid --%s: %v", f.Name, err)
	}
	return addr
}

// SetAPIConfig applies API-related command line flags to the config.
func SetAPIConfig(ctx *cli.Context, cfg *feeapi.Config) {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.Host = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.Port = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.CorsAllowedOrigins = SplitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
}

// SetWorkerConfig applies worker-related command line flags to the config.
func SetWorkerConfig(ctx *cli.Context, cfg *worker.Config) {
	if ctx.IsSet(NodeURLFlag.Name) {
		cfg.Node = ctx.String(NodeURLFlag.Name)
	}
	if ctx.IsSet(KeyFileFlag.Name) {
		cfg.KeyFile = ctx.String(KeyFileFlag.Name)
	}
	if ctx.IsSet(PollIntervalFlag.Name) {
		cfg.PollInterval = ctx.Duration(PollIntervalFlag.Name)
	}
	if ctx.IsSet(SeenCacheFlag.Name) {
		cfg.SeenCacheSize = ctx.Int(SeenCacheFlag.Name)
	}
}

// LoadKey loads the signing key named by --key, falling back to file.
func LoadKey(ctx *cli.Context, file string) ed25519.PrivateKey {
	if ctx.IsSet(KeyFileFlag.Name) {
		file = ctx.String(KeyFileFlag.Name)
	}
	if file == "" {
		Fatalf("No key file given (--%s)", KeyFileFlag.Name)
	}
	key, err := crypto.LoadEd25519(file)
	if err != nil {
		Fatalf("Failed to load key %s: %v", file, err)
	}
	return key
}
