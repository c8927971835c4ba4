package attestation

import (
	"errors"

	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

var errAccounts = errors.New("attestation: wrong number of accounts")

func init() {
	sysaction.DefaultRegistry.Register(params.AttestationProgramAddress, &attestationHandler{})
}

// attestationHandler implements sysaction.Handler for function management.
type attestationHandler struct{ prog Program }

func (h *attestationHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionFunctionSetEnclaveSigner
}

// Handle expects [function (writable), authority (signer)].
func (h *attestationHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	if len(ctx.Accounts) != 2 {
		return errAccounts
	}
	var p SetEnclaveSignerPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	auth, err := ctx.SignerAuthority(ctx.Accounts[1].Address)
	if err != nil {
		return err
	}
	return h.prog.SetEnclaveSigner(ctx.StateDB, ctx.Accounts[0].Address, auth, p.Signer)
}
