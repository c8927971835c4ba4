package schedule

import (
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
	"github.com/tos-network/feecycle/token"
)

// Account positions of the schedule_init instruction.
const (
	initIndexSchedule = iota
	initIndexMint
	initIndexPayer
	initIndexAttestationProgram
	initIndexAttestationState
	initIndexQueue
	initIndexFunction
	initIndexRequest
	initIndexEscrow
	initIndexTokenProgram
	initIndexSystemProgram

	initNumAccounts
)

// Account positions of the collect_and_burn instructions. Withheld sources
// follow the fixed accounts.
const (
	collectIndexSchedule = iota
	collectIndexMint
	collectIndexTokenAccount
	collectIndexTokenProgram

	collectNumAccounts
)

// NewInitInstruction builds the schedule_init instruction for mint, paid by
// payer and bound to the attested function fn on queue.
func NewInitInstruction(mint, payer, queue, fn common.Address, funding uint64) (*types.Instruction, error) {
	schedule, _, err := Address()
	if err != nil {
		return nil, err
	}
	req, err := RequestAddress(schedule, 0)
	if err != nil {
		return nil, err
	}
	escrow, err := attestation.EscrowAddress(req)
	if err != nil {
		return nil, err
	}
	state, err := attestation.StateAddress()
	if err != nil {
		return nil, err
	}
	data, err := sysaction.MakeSysAction(sysaction.ActionScheduleInit, &InitPayload{Funding: funding})
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: params.FeeScheduleProgramAddress,
		Accounts: []types.AccountMeta{
			initIndexSchedule:           types.NewAccountMeta(schedule, false),
			initIndexMint:               types.NewAccountMeta(mint, false),
			initIndexPayer:              types.NewAccountMeta(payer, true),
			initIndexAttestationProgram: types.NewReadonlyAccountMeta(params.AttestationProgramAddress, false),
			initIndexAttestationState:   types.NewReadonlyAccountMeta(state, false),
			initIndexQueue:              types.NewReadonlyAccountMeta(queue, false),
			initIndexFunction:           types.NewReadonlyAccountMeta(fn, false),
			initIndexRequest:            types.NewAccountMeta(req, false),
			initIndexEscrow:             types.NewAccountMeta(escrow, false),
			initIndexTokenProgram:       types.NewReadonlyAccountMeta(params.TokenProgramAddress, false),
			initIndexSystemProgram:      types.NewReadonlyAccountMeta(params.SystemProgramAddress, false),
		},
		Data: data,
	}, nil
}

func newCollectInstruction(kind sysaction.ActionKind, mint common.Address, sources []common.Address) (*types.Instruction, error) {
	schedule, _, err := Address()
	if err != nil {
		return nil, err
	}
	acct, err := token.AccountAddress(schedule, mint)
	if err != nil {
		return nil, err
	}
	metas := []types.AccountMeta{
		collectIndexSchedule:     types.NewReadonlyAccountMeta(schedule, false),
		collectIndexMint:         types.NewAccountMeta(mint, false),
		collectIndexTokenAccount: types.NewAccountMeta(acct, false),
		collectIndexTokenProgram: types.NewReadonlyAccountMeta(params.TokenProgramAddress, false),
	}
	for _, src := range sources {
		metas = append(metas, types.NewAccountMeta(src, false))
	}
	return &types.Instruction{
		ProgramID: params.FeeScheduleProgramAddress,
		Accounts:  metas,
		Data:      sysaction.Encode(&sysaction.SysAction{Action: kind}),
	}, nil
}

// NewCollectAndBurnFromAccountsInstruction builds the instruction that
// withdraws the fees withheld in sources and burns them.
func NewCollectAndBurnFromAccountsInstruction(mint common.Address, sources []common.Address) (*types.Instruction, error) {
	return newCollectInstruction(sysaction.ActionCollectAndBurnFromAccounts, mint, sources)
}

// NewCollectAndBurnFromMintInstruction builds the instruction that withdraws
// the fees harvested into mint and burns them.
func NewCollectAndBurnFromMintInstruction(mint common.Address) (*types.Instruction, error) {
	return newCollectInstruction(sysaction.ActionCollectAndBurnFromMint, mint, nil)
}
