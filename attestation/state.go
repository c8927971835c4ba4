package attestation

import (
	"encoding/binary"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/params"
)

const paramsChunkSize = 32

// entitySlot hashes (kind || addr || 0x00 || field) for a per-entity slot.
func entitySlot(kind string, addr common.Address, field string) common.Hash {
	key := make([]byte, 0, len(kind)+common.AddressLength+1+len(field))
	key = append(key, kind...)
	key = append(key, addr.Bytes()...)
	key = append(key, 0x00)
	key = append(key, field...)
	return common.BytesToHash(crypto.Keccak256(key))
}

func stateSlot(addr common.Address, field string) common.Hash {
	return entitySlot("att.state", addr, field)
}

func queueSlot(addr common.Address, field string) common.Hash {
	return entitySlot("att.queue", addr, field)
}

func functionSlot(addr common.Address, field string) common.Hash {
	return entitySlot("att.function", addr, field)
}

func requestSlot(addr common.Address, field string) common.Hash {
	return entitySlot("att.request", addr, field)
}

func paramsChunkSlot(req common.Address, index uint64) common.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	return entitySlot("att.request", req, "paramsChunk\x00"+string(idx[:]))
}

// pendingCountSlot stores the number of triggered, uncompleted requests.
var pendingCountSlot = crypto.Keccak256Hash([]byte("att\x00pendingCount"))

// pendingListSlot returns the slot of the i-th pending request (0-based).
func pendingListSlot(i uint64) common.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], i)
	return crypto.Keccak256Hash(append([]byte("att\x00pendingList\x00"), idx[:]...))
}

func get(db vm.StateDB, slot common.Hash) common.Hash {
	return db.GetState(params.AttestationProgramAddress, slot)
}

func set(db vm.StateDB, slot, value common.Hash) {
	db.SetState(params.AttestationProgramAddress, slot, value)
}

func readUint64(db vm.StateDB, slot common.Hash) uint64 {
	raw := get(db, slot)
	return binary.BigEndian.Uint64(raw[24:])
}

func writeUint64(db vm.StateDB, slot common.Hash, n uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[24:], n)
	set(db, slot, word)
}

func readBool(db vm.StateDB, slot common.Hash) bool {
	return get(db, slot)[31] != 0
}

func writeBool(db vm.StateDB, slot common.Hash, v bool) {
	var word common.Hash
	if v {
		word[31] = 1
	}
	set(db, slot, word)
}

func readAddress(db vm.StateDB, slot common.Hash) common.Address {
	return common.Address(get(db, slot))
}

func writeAddress(db vm.StateDB, slot common.Hash, addr common.Address) {
	set(db, slot, common.Hash(addr))
}

func chunkCount(valueLen uint64) uint64 {
	if valueLen == 0 {
		return 0
	}
	return (valueLen + paramsChunkSize - 1) / paramsChunkSize
}

func readParams(db vm.StateDB, req common.Address) []byte {
	valueLen := readUint64(db, requestSlot(req, "paramsLen"))
	if valueLen == 0 {
		return nil
	}
	value := make([]byte, valueLen)
	for i := uint64(0); i < chunkCount(valueLen); i++ {
		word := get(db, paramsChunkSlot(req, i))
		start := i * paramsChunkSize
		end := start + paramsChunkSize
		if end > valueLen {
			end = valueLen
		}
		copy(value[start:end], word[:end-start])
	}
	return value
}

func writeParams(db vm.StateDB, req common.Address, value []byte) {
	for i := uint64(0); i < chunkCount(uint64(len(value))); i++ {
		start := i * paramsChunkSize
		end := start + paramsChunkSize
		if end > uint64(len(value)) {
			end = uint64(len(value))
		}
		var word common.Hash
		copy(word[:], value[start:end])
		set(db, paramsChunkSlot(req, i), word)
	}
	writeUint64(db, requestSlot(req, "paramsLen"), uint64(len(value)))
}

func readQueue(db vm.StateDB, addr common.Address) *Queue {
	return &Queue{
		Address:    addr,
		Authority:  readAddress(db, queueSlot(addr, "authority")),
		RequestFee: readUint64(db, queueSlot(addr, "requestFee")),
	}
}

func readFunction(db vm.StateDB, addr common.Address) *Function {
	return &Function{
		Address:       addr,
		Queue:         readAddress(db, functionSlot(addr, "queue")),
		Authority:     readAddress(db, functionSlot(addr, "authority")),
		EnclaveSigner: readAddress(db, functionSlot(addr, "enclaveSigner")),
	}
}

func readRequest(db vm.StateDB, addr common.Address) *Request {
	return &Request{
		Address:      addr,
		Function:     readAddress(db, requestSlot(addr, "function")),
		Queue:        readAddress(db, requestSlot(addr, "queue")),
		Authority:    readAddress(db, requestSlot(addr, "authority")),
		Escrow:       readAddress(db, requestSlot(addr, "escrow")),
		Params:       readParams(db, addr),
		MaxParamsLen: readUint64(db, requestSlot(addr, "maxParamsLen")),
		Status:       RequestStatus(readUint64(db, requestSlot(addr, "status"))),
		CreatedAt:    readUint64(db, requestSlot(addr, "createdAt")),
		ValidAfter:   readUint64(db, requestSlot(addr, "validAfter")),
	}
}

func writeStatus(db vm.StateDB, req common.Address, status RequestStatus) {
	writeUint64(db, requestSlot(req, "status"), uint64(status))
}

// appendPending adds req to the pending list. The stored index is 1-based so
// that zero means absent.
func appendPending(db vm.StateDB, req common.Address) {
	n := readUint64(db, pendingCountSlot)
	writeAddress(db, pendingListSlot(n), req)
	writeUint64(db, requestSlot(req, "pendingIndex"), n+1)
	writeUint64(db, pendingCountSlot, n+1)
}

// removePending swap-removes req from the pending list.
func removePending(db vm.StateDB, req common.Address) {
	idx := readUint64(db, requestSlot(req, "pendingIndex"))
	if idx == 0 {
		return
	}
	n := readUint64(db, pendingCountSlot)
	last := readAddress(db, pendingListSlot(n-1))
	if idx-1 != n-1 {
		writeAddress(db, pendingListSlot(idx-1), last)
		writeUint64(db, requestSlot(last, "pendingIndex"), idx)
	}
	set(db, pendingListSlot(n-1), common.Hash{})
	set(db, requestSlot(req, "pendingIndex"), common.Hash{})
	writeUint64(db, pendingCountSlot, n-1)
}

func readPending(db vm.StateDB) []common.Address {
	n := readUint64(db, pendingCountSlot)
	out := make([]common.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, readAddress(db, pendingListSlot(i)))
	}
	return out
}
