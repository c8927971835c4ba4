// Package attestation implements the attested request queue: queues that
// price requests, functions that bind a queue to an enclave signer, and the
// randomness requests workers service.
package attestation

import (
	"errors"
	"fmt"

	"github.com/tos-network/feecycle/common"
)

// Sentinel errors returned by attestation operations.
var (
	ErrStateExists          = errors.New("attestation: state already initialized")
	ErrStateNotFound        = errors.New("attestation: state not initialized")
	ErrQueueExists          = errors.New("attestation: queue already exists")
	ErrQueueNotFound        = errors.New("attestation: queue not found")
	ErrFunctionExists       = errors.New("attestation: function already exists")
	ErrFunctionNotFound     = errors.New("attestation: function not found")
	ErrRequestExists        = errors.New("attestation: request already exists")
	ErrRequestNotFound      = errors.New("attestation: request not found")
	ErrInvalidStatus        = errors.New("attestation: request in wrong status")
	ErrParamsTooLong        = errors.New("attestation: request params exceed limit")
	ErrInsufficientFunds    = errors.New("attestation: payer cannot cover request fee")
	ErrInvalidEnclaveSigner = errors.New("attestation: invalid enclave signer")
)

// RequestStatus is the lifecycle state of a request.
type RequestStatus uint8

const (
	// StatusNone is the zero value of a missing request.
	StatusNone RequestStatus = iota
	// StatusPending means the request exists but has not been triggered.
	StatusPending
	// StatusTriggered means workers may service the request once its
	// valid-after slot is reached.
	StatusTriggered
	// StatusCompleted means a callback was accepted for the request.
	StatusCompleted
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusTriggered:
		return "triggered"
	case StatusCompleted:
		return "completed"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (s RequestStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RequestStatus) UnmarshalText(input []byte) error {
	for _, st := range []RequestStatus{StatusNone, StatusPending, StatusTriggered, StatusCompleted} {
		if st.String() == string(input) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("attestation: unknown request status %q", input)
}

// Queue prices requests.
type Queue struct {
	Address    common.Address `json:"address"`
	Authority  common.Address `json:"authority"`
	RequestFee uint64         `json:"requestFee"`
}

// Function binds a queue to the enclave signer that answers its requests.
type Function struct {
	Address       common.Address `json:"address"`
	Queue         common.Address `json:"queue"`
	Authority     common.Address `json:"authority"`
	EnclaveSigner common.Address `json:"enclaveSigner"`
}

// Request is one randomness request.
type Request struct {
	Address      common.Address `json:"address"`
	Function     common.Address `json:"function"`
	Queue        common.Address `json:"queue"`
	Authority    common.Address `json:"authority"`
	Escrow       common.Address `json:"escrow"`
	Params       []byte         `json:"params"`
	MaxParamsLen uint64         `json:"maxParamsLen"`
	Status       RequestStatus  `json:"status"`
	CreatedAt    uint64         `json:"createdAt"`
	ValidAfter   uint64         `json:"validAfter"`
}

// InitRequestArgs are the inputs of InitRequest.
type InitRequestArgs struct {
	Request      common.Address
	Function     common.Address
	Authority    common.Address // may trigger and complete the request
	Params       []byte
	MaxParamsLen uint64
	Slot         uint64
}

// SetEnclaveSignerPayload is the payload of a function_set_enclave_signer action.
type SetEnclaveSignerPayload struct {
	Signer common.Address `json:"signer"`
}
