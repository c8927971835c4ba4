package core

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/rawdb"
	"github.com/tos-network/feecycle/core/state"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/schedule"
	"github.com/tos-network/feecycle/sysaction"
	"github.com/tos-network/feecycle/token"
)

var errGenesisNoConfig = errors.New("genesis has no chain configuration")

// GenesisAccount is a native balance allocated at genesis.
type GenesisAccount struct {
	Address common.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

// Genesis specifies the ledger state written to an empty database: the
// attestation queue and function servicing the schedule, the governed mint
// and the initial native balances.
type Genesis struct {
	Config *params.ChainConfig `json:"config"`

	QueueAuthority common.Address `json:"queueAuthority"`
	EnclaveSigner  common.Address `json:"enclaveSigner"`
	RequestFee     uint64         `json:"requestFee"`

	Mint          common.Address `json:"mint"`
	Decimals      uint8          `json:"decimals"`
	MintAuthority common.Address `json:"mintAuthority"`
	InitialSupply uint64         `json:"initialSupply"` // minted to the mint authority's token account

	Alloc []GenesisAccount `json:"alloc"`
}

// GenesisAccounts are the identities created by a genesis.
type GenesisAccounts struct {
	Schedule         common.Address `json:"schedule"`
	AttestationState common.Address `json:"attestationState"`
	Queue            common.Address `json:"queue"`
	Function         common.Address `json:"function"`
	Mint             common.Address `json:"mint"`
}

// DeveloperGenesis returns a genesis for local use in which payer holds the
// native funds and mints the token, and signer answers randomness requests.
func DeveloperGenesis(payer, signer common.Address) *Genesis {
	return &Genesis{
		Config:         params.TestChainConfig,
		QueueAuthority: payer,
		EnclaveSigner:  signer,
		RequestFee:     params.DefaultRequestFee,
		Mint:           common.BytesToAddress(crypto.Keccak256([]byte("feecycle-dev-mint"))),
		Decimals:       9,
		MintAuthority:  payer,
		InitialSupply:  1_000_000_000,
		Alloc:          []GenesisAccount{{Address: payer, Balance: 1_000_000_000_000}},
	}
}

// Accounts derives the identities the genesis creates.
func (g *Genesis) Accounts() (*GenesisAccounts, error) {
	st, err := attestation.StateAddress()
	if err != nil {
		return nil, err
	}
	queue, err := attestation.QueueAddress(g.QueueAuthority)
	if err != nil {
		return nil, err
	}
	fn, err := attestation.FunctionAddress(queue, g.QueueAuthority)
	if err != nil {
		return nil, err
	}
	sched, _, err := schedule.Address()
	if err != nil {
		return nil, err
	}
	return &GenesisAccounts{Schedule: sched, AttestationState: st, Queue: queue, Function: fn, Mint: g.Mint}, nil
}

// Commit writes the genesis state into db and stores the chain config.
func (g *Genesis) Commit(db *state.Database) (*GenesisAccounts, error) {
	if g.Config == nil {
		return nil, errGenesisNoConfig
	}
	accounts, err := g.Accounts()
	if err != nil {
		return nil, err
	}
	statedb := state.New(db)

	var att attestation.Program
	if _, err := att.InitState(statedb, g.QueueAuthority); err != nil {
		return nil, fmt.Errorf("attestation state: %w", err)
	}
	if _, err := att.CreateQueue(statedb, g.QueueAuthority, g.RequestFee); err != nil {
		return nil, fmt.Errorf("attestation queue: %w", err)
	}
	if _, err := att.CreateFunction(statedb, accounts.Queue, g.QueueAuthority, g.EnclaveSigner); err != nil {
		return nil, fmt.Errorf("attestation function: %w", err)
	}

	var tok token.Program
	if err := tok.CreateMint(statedb, g.Mint, &token.MintConfig{
		Decimals:                   g.Decimals,
		MintAuthority:              g.MintAuthority,
		TransferFeeConfigAuthority: accounts.Schedule,
		WithdrawWithheldAuthority:  accounts.Schedule,
	}); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if g.InitialSupply > 0 {
		dest, err := tok.CreateAccount(statedb, g.Mint, g.MintAuthority)
		if err != nil {
			return nil, err
		}
		// Genesis acts with the mint authority's signature.
		gctx := &sysaction.Context{Signers: mapset.NewSet(g.MintAuthority)}
		auth, err := gctx.SignerAuthority(g.MintAuthority)
		if err != nil {
			return nil, err
		}
		if err := tok.MintTo(statedb, g.Mint, dest, auth, uint256.NewInt(g.InitialSupply)); err != nil {
			return nil, fmt.Errorf("initial supply: %w", err)
		}
	}
	for _, acc := range g.Alloc {
		statedb.AddBalance(acc.Address, uint256.NewInt(acc.Balance))
	}
	if err := statedb.Commit(0); err != nil {
		return nil, err
	}
	rawdb.WriteChainConfig(db.DiskDB(), g.Config)
	log.Info("Wrote genesis state", "chain", g.Config.ChainID, "schedule", accounts.Schedule, "mint", g.Mint)
	return accounts, nil
}
