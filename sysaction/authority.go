package sysaction

import (
	"errors"
	"fmt"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/crypto"
)

// ErrUnauthorized is returned when an authority fails verification.
var ErrUnauthorized = errors.New("sysaction: unauthorized")

// Authority is the proof of authorization presented to a privileged
// sub-call. It is either a key holder whose signature was verified by the
// ledger, or a program-derived address together with the program and seeds
// it is derived from.
type Authority struct {
	Address common.Address
	Program common.Address
	Seeds   [][]byte

	signed bool
}

// SignerAuthority returns the authority of a verified instruction signer.
func (ctx *Context) SignerAuthority(addr common.Address) (Authority, error) {
	if !ctx.IsSigner(addr) {
		return Authority{}, fmt.Errorf("%w: %s did not sign", ErrUnauthorized, addr)
	}
	return Authority{Address: addr, signed: true}, nil
}

// DerivedAuthority returns the authority of the address derived from program
// and seeds. The seeds must include the bump byte.
func DerivedAuthority(program common.Address, seeds ...[]byte) (Authority, error) {
	addr, err := crypto.CreateProgramAddress(program, seeds...)
	if err != nil {
		return Authority{}, err
	}
	return Authority{Address: addr, Program: program, Seeds: seeds}, nil
}

// Verify checks that a is a valid proof for expected.
func (a Authority) Verify(expected common.Address) error {
	if a.Address != expected {
		return fmt.Errorf("%w: have %s, want %s", ErrUnauthorized, a.Address, expected)
	}
	if a.signed {
		return nil
	}
	if a.Program.IsZero() {
		return fmt.Errorf("%w: %s is neither a signer nor derived", ErrUnauthorized, a.Address)
	}
	derived, err := crypto.CreateProgramAddress(a.Program, a.Seeds...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if derived != expected {
		return fmt.Errorf("%w: seeds derive %s, want %s", ErrUnauthorized, derived, expected)
	}
	return nil
}
