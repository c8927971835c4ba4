package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

var (
	// ErrNoInstruction is returned for an envelope without an instruction.
	ErrNoInstruction = errors.New("core: signed envelope carries no instruction")

	// ErrNonceTooLow is returned if the nonce of an instruction is lower than
	// the one present in the local state.
	ErrNonceTooLow = errors.New("core: nonce too low")

	// ErrNonceTooHigh is returned if the nonce of an instruction is higher
	// than the next one expected based on the local state.
	ErrNonceTooHigh = errors.New("core: nonce too high")
)

// nonceSlot is the storage word holding the nonce of addr. Nonces live under
// the system program, next to native balances.
func nonceSlot(addr common.Address) common.Hash {
	return crypto.Keccak256Hash([]byte("nonce"), addr.Bytes())
}

// GetNonce returns the next expected nonce of addr.
func GetNonce(db vm.StateDB, addr common.Address) uint64 {
	word := db.GetState(params.SystemProgramAddress, nonceSlot(addr))
	return binary.BigEndian.Uint64(word[common.HashLength-8:])
}

func setNonce(db vm.StateDB, addr common.Address, nonce uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[common.HashLength-8:], nonce)
	db.SetState(params.SystemProgramAddress, nonceSlot(addr), word)
}

var (
	processedMeter = metrics.NewRegisteredCounter("core/processed", "Instructions applied.")
	failedMeter    = metrics.NewRegisteredCounter("core/failed", "Instructions rejected.")
)

// StateProcessor takes care of transitioning state by applying signed
// instructions through the program registry.
type StateProcessor struct {
	config   *params.ChainConfig // Chain configuration options
	registry *sysaction.Registry // Programs instructions are dispatched to
}

// NewStateProcessor initialises a new StateProcessor. A nil registry selects
// sysaction.DefaultRegistry.
func NewStateProcessor(config *params.ChainConfig, registry *sysaction.Registry) *StateProcessor {
	if registry == nil {
		registry = sysaction.DefaultRegistry
	}
	return &StateProcessor{config: config, registry: registry}
}

// Process verifies the signatures of si against the chain id, checks the
// nonce of its first signer and runs its instruction at slot. On success the
// signer's nonce is incremented, so a signed instruction runs at most once.
// On error statedb holds no changes from si.
func (p *StateProcessor) Process(si *types.SignedInstruction, statedb vm.StateDB, slot uint64) error {
	if si == nil || si.Instruction == nil {
		failedMeter.Inc()
		return ErrNoInstruction
	}
	signers, err := si.Signers(p.config.ChainID)
	if err != nil {
		failedMeter.Inc()
		return err
	}
	ix := si.Instruction
	nonceAcct, signed := ix.NonceAccount()
	if signed {
		if err := checkNonce(statedb, nonceAcct, ix.Nonce); err != nil {
			failedMeter.Inc()
			return err
		}
	}
	ctx := &sysaction.Context{
		ProgramID: ix.ProgramID,
		Accounts:  ix.Accounts,
		Signers:   signers,
		Slot:      slot,
		StateDB:   statedb,
	}
	if err := p.registry.Execute(ctx, ix.Data); err != nil {
		failedMeter.Inc()
		return fmt.Errorf("could not apply instruction for %s: %w", ix.ProgramID, err)
	}
	if signed {
		setNonce(statedb, nonceAcct, ix.Nonce+1)
	}
	processedMeter.Inc()
	return nil
}

func checkNonce(db vm.StateDB, addr common.Address, nonce uint64) error {
	stNonce := GetNonce(db, addr)
	if nonce < stNonce {
		return fmt.Errorf("%w: address %s, instruction: %d state: %d", ErrNonceTooLow, addr, nonce, stNonce)
	}
	if nonce > stNonce {
		return fmt.Errorf("%w: address %s, instruction: %d state: %d", ErrNonceTooHigh, addr, nonce, stNonce)
	}
	return nil
}
