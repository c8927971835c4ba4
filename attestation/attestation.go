package attestation

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

var (
	requestInitMeter     = metrics.NewRegisteredCounter("attestation/request/init", "Requests created.")
	requestCompleteMeter = metrics.NewRegisteredCounter("attestation/request/complete", "Requests completed.")
)

func derive(seeds ...[]byte) (common.Address, error) {
	addr, _, err := crypto.FindProgramAddress(params.AttestationProgramAddress, seeds...)
	return addr, err
}

// StateAddress returns the address of the program state record.
func StateAddress() (common.Address, error) {
	return derive([]byte(params.AttestationStateSeed))
}

// QueueAddress returns the address of the queue created by authority.
func QueueAddress(authority common.Address) (common.Address, error) {
	return derive([]byte(params.QueueSeed), authority.Bytes())
}

// FunctionAddress returns the address of the function of queue created by
// authority.
func FunctionAddress(queue, authority common.Address) (common.Address, error) {
	return derive([]byte(params.FunctionSeed), queue.Bytes(), authority.Bytes())
}

// EscrowAddress returns the escrow that holds the fee paid for req.
func EscrowAddress(req common.Address) (common.Address, error) {
	return derive([]byte(params.EscrowSeed), req.Bytes())
}

// Program exposes the attestation operations to other programs.
type Program struct{}

// InitState creates the program state record.
func (Program) InitState(db vm.StateDB, authority common.Address) (common.Address, error) {
	addr, err := StateAddress()
	if err != nil {
		return common.Address{}, err
	}
	if readBool(db, stateSlot(addr, "exists")) {
		return common.Address{}, ErrStateExists
	}
	writeBool(db, stateSlot(addr, "exists"), true)
	writeAddress(db, stateSlot(addr, "authority"), authority)
	return addr, nil
}

// HasState reports whether addr is the initialized program state record.
func (Program) HasState(db vm.StateDB, addr common.Address) bool {
	return readBool(db, stateSlot(addr, "exists"))
}

// CreateQueue creates the queue of authority charging requestFee per request.
func (Program) CreateQueue(db vm.StateDB, authority common.Address, requestFee uint64) (common.Address, error) {
	addr, err := QueueAddress(authority)
	if err != nil {
		return common.Address{}, err
	}
	if readBool(db, queueSlot(addr, "exists")) {
		return common.Address{}, ErrQueueExists
	}
	writeBool(db, queueSlot(addr, "exists"), true)
	writeAddress(db, queueSlot(addr, "authority"), authority)
	writeUint64(db, queueSlot(addr, "requestFee"), requestFee)
	return addr, nil
}

// Queue returns the stored queue at addr.
func (Program) Queue(db vm.StateDB, addr common.Address) (*Queue, error) {
	if !readBool(db, queueSlot(addr, "exists")) {
		return nil, fmt.Errorf("%w: %s", ErrQueueNotFound, addr)
	}
	return readQueue(db, addr), nil
}

// CreateFunction creates a function on queue whose callbacks are signed by
// enclaveSigner.
func (Program) CreateFunction(db vm.StateDB, queue, authority, enclaveSigner common.Address) (common.Address, error) {
	if !readBool(db, queueSlot(queue, "exists")) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrQueueNotFound, queue)
	}
	if enclaveSigner.IsZero() {
		return common.Address{}, ErrInvalidEnclaveSigner
	}
	addr, err := FunctionAddress(queue, authority)
	if err != nil {
		return common.Address{}, err
	}
	if readBool(db, functionSlot(addr, "exists")) {
		return common.Address{}, ErrFunctionExists
	}
	writeBool(db, functionSlot(addr, "exists"), true)
	writeAddress(db, functionSlot(addr, "queue"), queue)
	writeAddress(db, functionSlot(addr, "authority"), authority)
	writeAddress(db, functionSlot(addr, "enclaveSigner"), enclaveSigner)
	return addr, nil
}

// Function returns the stored function at addr.
func (Program) Function(db vm.StateDB, addr common.Address) (*Function, error) {
	if !readBool(db, functionSlot(addr, "exists")) {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, addr)
	}
	return readFunction(db, addr), nil
}

// SetEnclaveSigner rotates the enclave signer of fn.
func (p Program) SetEnclaveSigner(db vm.StateDB, fn common.Address, authority sysaction.Authority, signer common.Address) error {
	f, err := p.Function(db, fn)
	if err != nil {
		return err
	}
	if err := authority.Verify(f.Authority); err != nil {
		return err
	}
	if signer.IsZero() {
		return ErrInvalidEnclaveSigner
	}
	writeAddress(db, functionSlot(fn, "enclaveSigner"), signer)
	log.Info("Enclave signer rotated", "function", fn, "signer", signer)
	return nil
}

// InitRequest creates a request on the queue of args.Function. The queue's
// request fee is moved from payer into the request's escrow.
func (p Program) InitRequest(db vm.StateDB, args *InitRequestArgs, payer sysaction.Authority) error {
	if readUint64(db, requestSlot(args.Request, "status")) != uint64(StatusNone) {
		return fmt.Errorf("%w: %s", ErrRequestExists, args.Request)
	}
	fn, err := p.Function(db, args.Function)
	if err != nil {
		return err
	}
	queue, err := p.Queue(db, fn.Queue)
	if err != nil {
		return err
	}
	if uint64(len(args.Params)) > args.MaxParamsLen {
		return fmt.Errorf("%w: %d > %d", ErrParamsTooLong, len(args.Params), args.MaxParamsLen)
	}
	if err := payer.Verify(payer.Address); err != nil {
		return err
	}
	fee := uint256.NewInt(queue.RequestFee)
	if db.GetBalance(payer.Address).Lt(fee) {
		return fmt.Errorf("%w: need %d", ErrInsufficientFunds, queue.RequestFee)
	}
	escrow, err := EscrowAddress(args.Request)
	if err != nil {
		return err
	}

	db.SubBalance(payer.Address, fee)
	db.AddBalance(escrow, fee)

	r := args.Request
	writeAddress(db, requestSlot(r, "function"), args.Function)
	writeAddress(db, requestSlot(r, "queue"), fn.Queue)
	writeAddress(db, requestSlot(r, "authority"), args.Authority)
	writeAddress(db, requestSlot(r, "escrow"), escrow)
	writeParams(db, r, args.Params)
	writeUint64(db, requestSlot(r, "maxParamsLen"), args.MaxParamsLen)
	writeUint64(db, requestSlot(r, "createdAt"), args.Slot)
	writeStatus(db, r, StatusPending)

	requestInitMeter.Inc()
	return nil
}

// Request returns the stored request at addr.
func (Program) Request(db vm.StateDB, addr common.Address) (*Request, error) {
	if RequestStatus(readUint64(db, requestSlot(addr, "status"))) == StatusNone {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, addr)
	}
	return readRequest(db, addr), nil
}

// TriggerRequest makes a pending request visible to workers from validAfter on.
func (p Program) TriggerRequest(db vm.StateDB, req common.Address, authority sysaction.Authority, validAfter uint64) error {
	r, err := p.Request(db, req)
	if err != nil {
		return err
	}
	if err := authority.Verify(r.Authority); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrInvalidStatus, req, r.Status)
	}
	writeUint64(db, requestSlot(req, "validAfter"), validAfter)
	writeStatus(db, req, StatusTriggered)
	appendPending(db, req)
	return nil
}

// CompleteRequest closes a triggered request after its callback was
// accepted and pays the escrowed fee to the function's enclave signer.
func (p Program) CompleteRequest(db vm.StateDB, req common.Address, authority sysaction.Authority) error {
	r, err := p.Request(db, req)
	if err != nil {
		return err
	}
	if err := authority.Verify(r.Authority); err != nil {
		return err
	}
	if r.Status != StatusTriggered {
		return fmt.Errorf("%w: %s is %s", ErrInvalidStatus, req, r.Status)
	}
	fn, err := p.Function(db, r.Function)
	if err != nil {
		return err
	}
	if bal := db.GetBalance(r.Escrow); !bal.IsZero() {
		db.SubBalance(r.Escrow, bal)
		db.AddBalance(fn.EnclaveSigner, bal)
	}
	writeStatus(db, req, StatusCompleted)
	removePending(db, req)

	requestCompleteMeter.Inc()
	return nil
}

// PendingRequests returns the triggered requests whose valid-after slot has
// been reached at slot.
func (p Program) PendingRequests(db vm.StateDB, slot uint64) []*Request {
	var out []*Request
	for _, addr := range readPending(db) {
		r := readRequest(db, addr)
		if r.ValidAfter <= slot {
			out = append(out, r)
		}
	}
	return out
}

// PendingCount returns the number of triggered, uncompleted requests.
func (Program) PendingCount(db vm.StateDB) uint64 {
	return readUint64(db, pendingCountSlot)
}
