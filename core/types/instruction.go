// Package types contains the ledger's instruction and signature types.
package types

import (
	"errors"

	"github.com/tos-network/feecycle/common"
)

var (
	ErrNoAccounts       = errors.New("instruction: no accounts")
	ErrMissingSignature = errors.New("instruction: missing signature for signer account")
	ErrInvalidSignature = errors.New("instruction: invalid signature")
	ErrUnexpectedSigner = errors.New("instruction: signature from non-signer account")
)

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Address    common.Address `json:"address"`
	IsSigner   bool           `json:"isSigner"`
	IsWritable bool           `json:"isWritable"`
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer}
}

// Instruction is a single program invocation: a target program, an ordered
// account list and opaque data interpreted by the program.
//
// Nonce is the sequence number of the nonce account (the first signer). It
// is ignored for instructions without signers.
type Instruction struct {
	ProgramID common.Address `json:"programId"`
	Accounts  []AccountMeta  `json:"accounts"`
	Data      []byte         `json:"data"`
	Nonce     uint64         `json:"nonce"`
}

// Copy returns a deep copy of the instruction.
func (ix *Instruction) Copy() *Instruction {
	cpy := &Instruction{
		ProgramID: ix.ProgramID,
		Accounts:  make([]AccountMeta, len(ix.Accounts)),
		Data:      common.CopyBytes(ix.Data),
		Nonce:     ix.Nonce,
	}
	copy(cpy.Accounts, ix.Accounts)
	return cpy
}

// NonceAccount returns the first signer account, whose nonce orders the
// instructions it signs. ok is false for unsigned instructions.
func (ix *Instruction) NonceAccount() (addr common.Address, ok bool) {
	for _, acc := range ix.Accounts {
		if acc.IsSigner {
			return acc.Address, true
		}
	}
	return common.Address{}, false
}

// Addresses returns the account addresses in order.
func (ix *Instruction) Addresses() []common.Address {
	out := make([]common.Address, len(ix.Accounts))
	for i, acc := range ix.Accounts {
		out[i] = acc.Address
	}
	return out
}

// Signature is an ed25519 signature by one account over the instruction's
// signing hash.
type Signature struct {
	Signer common.Address `json:"signer"`
	Sig    []byte         `json:"sig"`
}

// SignedInstruction is an instruction together with the signatures of its
// signer accounts, as submitted to the ledger.
type SignedInstruction struct {
	Instruction *Instruction `json:"instruction"`
	Signatures  []Signature  `json:"signatures"`
}
