// Package callback defines the wire contract of the update callback: the
// instruction a worker emits after sampling and the schedule program accepts.
//
// Instruction data is the trigger_update discriminator followed by the
// sampled result as a little-endian uint32. The account list has a fixed
// order; both position and value of every entry are checked by the receiver.
package callback

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/sysaction"
)

// ResultLength is the size of the encoded result.
const ResultLength = 4

// DataLength is the full size of callback instruction data.
const DataLength = sysaction.DiscriminatorLength + ResultLength

var (
	ErrInvalidData     = errors.New("callback: invalid instruction data")
	ErrInvalidAccounts = errors.New("callback: invalid account list")
)

// Account positions in the callback instruction.
const (
	IndexSchedule = iota
	IndexMint
	IndexEnclaveSigner
	IndexAttestationProgram
	IndexAttestationState
	IndexQueue
	IndexFunction
	IndexRequest
	IndexEscrow
	IndexTokenProgram
	IndexSystemProgram

	NumAccounts
)

// Accounts names every identity carried by a callback instruction.
type Accounts struct {
	Schedule           common.Address
	Mint               common.Address
	EnclaveSigner      common.Address
	AttestationProgram common.Address
	AttestationState   common.Address
	Queue              common.Address
	Function           common.Address
	Request            common.Address
	Escrow             common.Address
	TokenProgram       common.Address
	SystemProgram      common.Address
}

// layout gives the signer and writable flags expected at each position.
var layout = [NumAccounts]struct{ signer, writable bool }{
	IndexSchedule:      {writable: true},
	IndexMint:          {writable: true},
	IndexEnclaveSigner: {signer: true},
	IndexRequest:       {writable: true},
	IndexEscrow:        {writable: true},
}

func (a *Accounts) ordered() [NumAccounts]common.Address {
	return [NumAccounts]common.Address{
		IndexSchedule:           a.Schedule,
		IndexMint:               a.Mint,
		IndexEnclaveSigner:      a.EnclaveSigner,
		IndexAttestationProgram: a.AttestationProgram,
		IndexAttestationState:   a.AttestationState,
		IndexQueue:              a.Queue,
		IndexFunction:           a.Function,
		IndexRequest:            a.Request,
		IndexEscrow:             a.Escrow,
		IndexTokenProgram:       a.TokenProgram,
		IndexSystemProgram:      a.SystemProgram,
	}
}

// Metas returns the account list in wire order.
func (a *Accounts) Metas() []types.AccountMeta {
	addrs := a.ordered()
	metas := make([]types.AccountMeta, NumAccounts)
	for i, addr := range addrs {
		metas[i] = types.AccountMeta{
			Address:    addr,
			IsSigner:   layout[i].signer,
			IsWritable: layout[i].writable,
		}
	}
	return metas
}

// ParseAccounts checks the length and flags of metas and returns the
// identities at each position. Identity values are validated by the receiver.
func ParseAccounts(metas []types.AccountMeta) (*Accounts, error) {
	if len(metas) != NumAccounts {
		return nil, fmt.Errorf("%w: have %d accounts, want %d", ErrInvalidAccounts, len(metas), NumAccounts)
	}
	for i, m := range metas {
		if m.IsSigner != layout[i].signer || (layout[i].writable && !m.IsWritable) {
			return nil, fmt.Errorf("%w: account %d has wrong flags", ErrInvalidAccounts, i)
		}
	}
	return &Accounts{
		Schedule:           metas[IndexSchedule].Address,
		Mint:               metas[IndexMint].Address,
		EnclaveSigner:      metas[IndexEnclaveSigner].Address,
		AttestationProgram: metas[IndexAttestationProgram].Address,
		AttestationState:   metas[IndexAttestationState].Address,
		Queue:              metas[IndexQueue].Address,
		Function:           metas[IndexFunction].Address,
		Request:            metas[IndexRequest].Address,
		Escrow:             metas[IndexEscrow].Address,
		TokenProgram:       metas[IndexTokenProgram].Address,
		SystemProgram:      metas[IndexSystemProgram].Address,
	}, nil
}

// EncodeResult returns the callback payload carrying result.
func EncodeResult(result uint32) []byte {
	payload := make([]byte, ResultLength)
	binary.LittleEndian.PutUint32(payload, result)
	return payload
}

// DecodeResult parses the payload of a trigger_update action.
func DecodeResult(payload []byte) (uint32, error) {
	if len(payload) != ResultLength {
		return 0, fmt.Errorf("%w: payload is %d bytes, want %d", ErrInvalidData, len(payload), ResultLength)
	}
	return binary.LittleEndian.Uint32(payload), nil
}

// EncodeData returns the full instruction data of a callback.
func EncodeData(result uint32) []byte {
	return sysaction.Encode(&sysaction.SysAction{
		Action:  sysaction.ActionTriggerUpdate,
		Payload: EncodeResult(result),
	})
}

// NewInstruction builds the callback instruction addressed to program.
func NewInstruction(program common.Address, accounts *Accounts, result uint32) *types.Instruction {
	return &types.Instruction{
		ProgramID: program,
		Accounts:  accounts.Metas(),
		Data:      EncodeData(result),
	}
}
