package utils

import (
	"flag"
	"reflect"
	"testing"
	"time"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/ledger"
	"github.com/tos-network/feecycle/worker"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, fl []cli.Flag, args ...string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = fl
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cli.NewContext(app, set, nil)
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := SplitAndTrim(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetLedgerConfigGenesis(t *testing.T) {
	payer, signer := common.Address{0x01}, common.Address{0x02}
	ctx := newContext(t, LedgerFlags,
		"--genesis.payer="+payer.Hex(),
		"--genesis.signer="+signer.Hex(),
		"--genesis.requestfee=7",
		"--cache.state=8",
	)
	cfg := ledger.Defaults
	SetLedgerConfig(ctx, &cfg)
	SetGenesisConfig(ctx, &cfg)
	if cfg.StateCache != 8 {
		t.Fatalf("state cache = %d, want 8", cfg.StateCache)
	}
	if cfg.Genesis == nil {
		t.Fatal("expected genesis")
	}
	if cfg.Genesis.MintAuthority != payer || cfg.Genesis.EnclaveSigner != signer {
		t.Fatalf("wrong genesis identities: %+v", cfg.Genesis)
	}
	if cfg.Genesis.RequestFee != 7 {
		t.Fatalf("request fee = %d, want 7", cfg.Genesis.RequestFee)
	}
}

func TestSetAPIConfig(t *testing.T) {
	ctx := newContext(t, APIFlags, "--http.port=9000", "--http.corsdomain=a.org, b.org")
	cfg := feeapi.Defaults
	SetAPIConfig(ctx, &cfg)
	if cfg.Port != 9000 || cfg.Host != feeapi.Defaults.Host {
		t.Fatalf("unexpected endpoint %s:%d", cfg.Host, cfg.Port)
	}
	if !reflect.DeepEqual(cfg.CorsAllowedOrigins, []string{"a.org", "b.org"}) {
		t.Fatalf("cors = %v", cfg.CorsAllowedOrigins)
	}
}

func TestSetWorkerConfig(t *testing.T) {
	ctx := newContext(t, WorkerFlags, "--node=http://node:1", "--poll.interval=5s")
	cfg := worker.Defaults
	SetWorkerConfig(ctx, &cfg)
	if cfg.Node != "http://node:1" || cfg.PollInterval != 5*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SeenCacheSize != worker.Defaults.SeenCacheSize {
		t.Fatalf("unset flag changed seen cache to %d", cfg.SeenCacheSize)
	}
}
