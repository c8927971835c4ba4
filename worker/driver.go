// Package worker services randomness requests off-chain: it decodes a
// request's parameters, samples a value from the enclave's entropy source
// and builds the signed callback that reports it back to the ledger.
package worker

import (
	"github.com/google/uuid"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/callback"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/request"
)

// State is the progress of one invocation through the driver.
type State uint8

const (
	Received State = iota
	Decoded
	Sampled
	CallbackEmitted
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Decoded:
		return "decoded"
	case Sampled:
		return "sampled"
	case CallbackEmitted:
		return "callback-emitted"
	}
	return "unknown"
}

// Sampler draws a value from an inclusive range.
type Sampler interface {
	Sample(min, max uint8) (uint8, error)
}

// Invocation records one pass of a request through the driver.
type Invocation struct {
	ID       uuid.UUID
	Request  *attestation.Request
	State    State
	Params   *request.Params
	Result   uint8
	Callback *types.Instruction
}

// Driver turns requests into callback instructions. It holds no state
// between invocations and never retries.
type Driver struct {
	sampler          Sampler
	enclaveSigner    common.Address
	attestationState common.Address
}

// NewDriver returns a driver sampling from sampler whose callbacks are
// signed by enclaveSigner.
func NewDriver(sampler Sampler, enclaveSigner common.Address) (*Driver, error) {
	state, err := attestation.StateAddress()
	if err != nil {
		return nil, err
	}
	return &Driver{sampler: sampler, enclaveSigner: enclaveSigner, attestationState: state}, nil
}

// Run services req. On error the returned invocation shows the last state
// reached; decode failures wrap request.ErrArgParseFail and entropy failures
// wrap randomness.ErrSamplingFailure.
func (d *Driver) Run(req *attestation.Request) (*Invocation, error) {
	inv := &Invocation{ID: uuid.New(), Request: req, State: Received}

	p, err := request.Decode(req.Params)
	if err != nil {
		return inv, err
	}
	inv.Params, inv.State = p, Decoded

	v, err := d.sampler.Sample(params.MinRandSample, p.MaxValue)
	if err != nil {
		return inv, err
	}
	inv.Result, inv.State = v, Sampled

	inv.Callback = callback.NewInstruction(p.ProgramID, &callback.Accounts{
		Schedule:           p.Global,
		Mint:               p.Mint,
		EnclaveSigner:      d.enclaveSigner,
		AttestationProgram: params.AttestationProgramAddress,
		AttestationState:   d.attestationState,
		Queue:              req.Queue,
		Function:           req.Function,
		Request:            req.Address,
		Escrow:             req.Escrow,
		TokenProgram:       params.TokenProgramAddress,
		SystemProgram:      params.SystemProgramAddress,
	}, uint32(v))
	inv.State = CallbackEmitted
	return inv, nil
}
