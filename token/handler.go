package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

var errAccounts = errors.New("token: wrong number of accounts")

func init() {
	sysaction.DefaultRegistry.Register(params.TokenProgramAddress, &tokenHandler{})
}

// tokenHandler implements sysaction.Handler for user-facing token actions.
type tokenHandler struct{ prog Program }

func (h *tokenHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionTokenCreateAccount, sysaction.ActionTokenTransfer, sysaction.ActionTokenHarvest:
		return true
	}
	return false
}

func (h *tokenHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionTokenCreateAccount:
		return h.handleCreateAccount(ctx)
	case sysaction.ActionTokenTransfer:
		return h.handleTransfer(ctx, sa)
	case sysaction.ActionTokenHarvest:
		return h.handleHarvest(ctx)
	}
	return nil
}

// handleCreateAccount expects [owner (signer), mint].
func (h *tokenHandler) handleCreateAccount(ctx *sysaction.Context) error {
	if len(ctx.Accounts) != 2 {
		return errAccounts
	}
	owner, mint := ctx.Accounts[0].Address, ctx.Accounts[1].Address
	if _, err := ctx.SignerAuthority(owner); err != nil {
		return err
	}
	_, err := h.prog.CreateAccount(ctx.StateDB, mint, owner)
	return err
}

// handleTransfer expects [source (writable), destination (writable), owner (signer)].
func (h *tokenHandler) handleTransfer(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	if len(ctx.Accounts) != 3 {
		return errAccounts
	}
	var p TransferPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	if p.Amount == 0 {
		return fmt.Errorf("%w: zero transfer", ErrInvalidAmount)
	}
	auth, err := ctx.SignerAuthority(ctx.Accounts[2].Address)
	if err != nil {
		return err
	}
	_, err = h.prog.Transfer(ctx.StateDB, ctx.Accounts[0].Address, ctx.Accounts[1].Address, auth, uint256.NewInt(p.Amount))
	return err
}

// handleHarvest expects [mint, sources...].
func (h *tokenHandler) handleHarvest(ctx *sysaction.Context) error {
	if len(ctx.Accounts) < 2 {
		return errAccounts
	}
	addrs := make([]common.Address, 0, len(ctx.Accounts)-1)
	for _, acc := range ctx.Accounts[1:] {
		addrs = append(addrs, acc.Address)
	}
	_, err := h.prog.HarvestWithheldToMint(ctx.StateDB, ctx.Accounts[0].Address, addrs)
	return err
}
