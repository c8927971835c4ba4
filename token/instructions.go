package token

import (
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

// NewCreateAccountInstruction builds the token_create_account instruction
// creating the canonical account of owner for mint.
func NewCreateAccountInstruction(owner, mint common.Address) (*types.Instruction, error) {
	data, err := sysaction.MakeSysAction(sysaction.ActionTokenCreateAccount, nil)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: params.TokenProgramAddress,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(owner, true),
			types.NewReadonlyAccountMeta(mint, false),
		},
		Data: data,
	}, nil
}

// NewTransferInstruction builds a token_transfer of amount from the token
// account src to dst, authorized by owner.
func NewTransferInstruction(src, dst, owner common.Address, amount uint64) (*types.Instruction, error) {
	data, err := sysaction.MakeSysAction(sysaction.ActionTokenTransfer, &TransferPayload{Amount: amount})
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: params.TokenProgramAddress,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(src, false),
			types.NewAccountMeta(dst, false),
			types.NewReadonlyAccountMeta(owner, true),
		},
		Data: data,
	}, nil
}
