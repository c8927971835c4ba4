package token

import (
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/rawdb"
	"github.com/tos-network/feecycle/core/state"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

// newTestState creates a fresh in-memory StateDB for tests.
func newTestState() *state.StateDB {
	return state.New(state.NewDatabase(rawdb.NewMemoryDatabase()))
}

var (
	prog      Program
	testMint  = common.Address{0x4d}
	authority = common.Address{0xa1}
	alice     = common.Address{0xa2}
	bob       = common.Address{0xb0}
)

// signer returns a key-holder authority for addr.
func signer(t *testing.T, addr common.Address) sysaction.Authority {
	t.Helper()
	ctx := &sysaction.Context{Signers: mapset.NewSet(addr)}
	auth, err := ctx.SignerAuthority(addr)
	if err != nil {
		t.Fatalf("signer authority: %v", err)
	}
	return auth
}

// setup creates a mint with a 10% fee and funds alice with 10000 tokens.
func setup(t *testing.T) (*state.StateDB, common.Address, common.Address) {
	t.Helper()
	st := newTestState()
	cfg := &MintConfig{
		Decimals:                   9,
		MintAuthority:              authority,
		TransferFeeConfigAuthority: authority,
		WithdrawWithheldAuthority:  authority,
		TransferFeeBP:              1000,
	}
	if err := prog.CreateMint(st, testMint, cfg); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	a, err := prog.CreateAccount(st, testMint, alice)
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	b, err := prog.CreateAccount(st, testMint, bob)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if err := prog.MintTo(st, testMint, a, signer(t, authority), uint256.NewInt(10000)); err != nil {
		t.Fatalf("mint to: %v", err)
	}
	return st, a, b
}

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		amount uint64
		bp     uint16
		max    uint64
		want   uint64
	}{
		{1000, 0, 0, 0},
		{1000, 1000, 0, 100},
		{1000, 6000, 0, 600},
		{1000, 6000, 50, 50},
		{9, 1000, 0, 0},
		{1000, 10000, 0, 1000},
	}
	for _, tt := range tests {
		got := CalculateFee(uint256.NewInt(tt.amount), tt.bp, tt.max)
		if got.Uint64() != tt.want {
			t.Errorf("CalculateFee(%d, %d, %d) = %d, want %d", tt.amount, tt.bp, tt.max, got.Uint64(), tt.want)
		}
	}
}

func TestTransferWithholdsFee(t *testing.T) {
	st, a, b := setup(t)
	fee, err := prog.Transfer(st, a, b, signer(t, alice), uint256.NewInt(1000))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if fee.Uint64() != 100 {
		t.Fatalf("fee = %d, want 100", fee.Uint64())
	}
	acc, _ := prog.Account(st, b)
	if acc.Amount.Uint64() != 900 || acc.Withheld.Uint64() != 100 {
		t.Fatalf("bob amount=%d withheld=%d", acc.Amount.Uint64(), acc.Withheld.Uint64())
	}
	src, _ := prog.Account(st, a)
	if src.Amount.Uint64() != 9000 {
		t.Fatalf("alice amount=%d", src.Amount.Uint64())
	}
}

func TestTransferRequiresOwner(t *testing.T) {
	st, a, b := setup(t)
	if _, err := prog.Transfer(st, a, b, signer(t, bob), uint256.NewInt(1)); !errors.Is(err, sysaction.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := prog.Transfer(st, a, b, signer(t, alice), uint256.NewInt(10001)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
}

func TestSetTransferFee(t *testing.T) {
	st, _, _ := setup(t)
	if err := prog.SetTransferFee(st, testMint, signer(t, alice), 0, 0); !errors.Is(err, sysaction.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if err := prog.SetTransferFee(st, testMint, signer(t, authority), 10001, 0); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("want ErrInvalidFee, got %v", err)
	}
	if err := prog.SetTransferFee(st, testMint, signer(t, authority), 3000, 7); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	m, _ := prog.Mint(st, testMint)
	if m.TransferFeeBP != 3000 || m.MaximumFee != 7 {
		t.Fatalf("fee config = %d/%d", m.TransferFeeBP, m.MaximumFee)
	}
}

func TestWithdrawAndBurn(t *testing.T) {
	st, a, b := setup(t)
	if _, err := prog.Transfer(st, a, b, signer(t, alice), uint256.NewInt(1000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := prog.Transfer(st, b, a, signer(t, bob), uint256.NewInt(500)); err != nil {
		t.Fatalf("transfer back: %v", err)
	}
	// Withheld: bob 100, alice 50. Harvest alice's into the mint.
	harvested, err := prog.HarvestWithheldToMint(st, testMint, []common.Address{a})
	if err != nil || harvested.Uint64() != 50 {
		t.Fatalf("harvest = %v, %v", harvested, err)
	}
	sink, err := prog.CreateAccount(st, testMint, authority)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	got, err := prog.WithdrawWithheldFromAccounts(st, testMint, sink, signer(t, authority), []common.Address{b})
	if err != nil || got.Uint64() != 100 {
		t.Fatalf("withdraw from accounts = %v, %v", got, err)
	}
	got, err = prog.WithdrawWithheldFromMint(st, testMint, sink, signer(t, authority))
	if err != nil || got.Uint64() != 50 {
		t.Fatalf("withdraw from mint = %v, %v", got, err)
	}
	if err := prog.Burn(st, sink, signer(t, authority), uint256.NewInt(150)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	m, _ := prog.Mint(st, testMint)
	if m.Supply.Uint64() != 10000-150 || !m.Withheld.IsZero() {
		t.Fatalf("supply=%d withheld=%d", m.Supply.Uint64(), m.Withheld.Uint64())
	}
	if _, err := prog.WithdrawWithheldFromMint(st, testMint, sink, signer(t, alice)); !errors.Is(err, sysaction.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestDerivedAuthorityControlsMint(t *testing.T) {
	st := newTestState()
	program := common.Address{0x77}
	pda, bump, err := crypto.FindProgramAddress(program, []byte("global"))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	cfg := &MintConfig{TransferFeeConfigAuthority: pda, WithdrawWithheldAuthority: pda}
	if err := prog.CreateMint(st, testMint, cfg); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	auth, err := sysaction.DerivedAuthority(program, []byte("global"), []byte{bump})
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if err := prog.SetTransferFee(st, testMint, auth, 2000, 0); err != nil {
		t.Fatalf("set fee via derived authority: %v", err)
	}
	wrong, _ := sysaction.DerivedAuthority(common.Address{0x78}, []byte("global"), []byte{bump})
	if err := prog.SetTransferFee(st, testMint, wrong, 0, 0); err == nil {
		t.Fatal("foreign derived authority accepted")
	}
}

func TestHandlerTransfer(t *testing.T) {
	st, a, b := setup(t)
	reg := sysaction.NewRegistry()
	reg.Register(params.TokenProgramAddress, &tokenHandler{})
	data, err := sysaction.MakeSysAction(sysaction.ActionTokenTransfer, &TransferPayload{Amount: 2000})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ctx := &sysaction.Context{
		ProgramID: params.TokenProgramAddress,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(a, false),
			types.NewAccountMeta(b, false),
			types.NewReadonlyAccountMeta(alice, true),
		},
		Signers: mapset.NewSet(alice),
		StateDB: st,
	}
	if err := reg.Execute(ctx, data); err != nil {
		t.Fatalf("execute: %v", err)
	}
	acc, _ := prog.Account(st, b)
	if acc.Amount.Uint64() != 1800 {
		t.Fatalf("bob amount=%d", acc.Amount.Uint64())
	}

	ctx.Signers = mapset.NewSet(bob)
	if err := reg.Execute(ctx, data); !errors.Is(err, sysaction.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}
