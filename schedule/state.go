package schedule

import (
	"encoding/binary"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
)

// recordSlot hashes ("schedule" || 0x00 || field) for a field of the record
// stored under the record's own address.
func recordSlot(field string) common.Hash {
	return crypto.Keccak256Hash([]byte("schedule\x00" + field))
}

var (
	initializedSlot    = recordSlot("initialized")
	bumpSlot           = recordSlot("bump")
	delayHoursSlot     = recordSlot("nextUpdateDelayHours")
	dueAtSlot          = recordSlot("nextUpdateDueAt")
	lastUpdateSlot     = recordSlot("lastUpdate")
	mintSlot           = recordSlot("mint")
	functionSlot       = recordSlot("function")
	queueSlot          = recordSlot("queue")
	attestationSlot    = recordSlot("attestationState")
	activeRequestSlot  = recordSlot("activeRequest")
	feeSlot            = recordSlot("currentFeeBp")
	requestCounterSlot = recordSlot("requestCounter")
	cyclesSlot         = recordSlot("cycles")
)

func readUint64(db vm.StateDB, owner common.Address, slot common.Hash) uint64 {
	raw := db.GetState(owner, slot)
	return binary.BigEndian.Uint64(raw[24:])
}

func writeUint64(db vm.StateDB, owner common.Address, slot common.Hash, n uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[24:], n)
	db.SetState(owner, slot, word)
}

func readBool(db vm.StateDB, owner common.Address, slot common.Hash) bool {
	return db.GetState(owner, slot)[31] != 0
}

func writeBool(db vm.StateDB, owner common.Address, slot common.Hash, v bool) {
	var word common.Hash
	if v {
		word[31] = 1
	}
	db.SetState(owner, slot, word)
}

func readAddress(db vm.StateDB, owner common.Address, slot common.Hash) common.Address {
	return common.Address(db.GetState(owner, slot))
}

func writeAddress(db vm.StateDB, owner common.Address, slot common.Hash, addr common.Address) {
	db.SetState(owner, slot, common.Hash(addr))
}

// isInitialized reports whether a record is stored at addr.
func isInitialized(db vm.StateDB, addr common.Address) bool {
	return readBool(db, addr, initializedSlot)
}

// ReadRecord loads the record stored at addr.
func ReadRecord(db vm.StateDB, addr common.Address) (*Record, error) {
	if !isInitialized(db, addr) {
		return nil, ErrNotInitialized
	}
	return &Record{
		Address:              addr,
		Bump:                 uint8(readUint64(db, addr, bumpSlot)),
		NextUpdateDelayHours: uint8(readUint64(db, addr, delayHoursSlot)),
		NextUpdateDueAt:      readUint64(db, addr, dueAtSlot),
		LastUpdate:           readUint64(db, addr, lastUpdateSlot),
		Mint:                 readAddress(db, addr, mintSlot),
		Function:             readAddress(db, addr, functionSlot),
		Queue:                readAddress(db, addr, queueSlot),
		AttestationState:     readAddress(db, addr, attestationSlot),
		ActiveRequest:        readAddress(db, addr, activeRequestSlot),
		CurrentFeeBP:         uint16(readUint64(db, addr, feeSlot)),
		RequestCounter:       readUint64(db, addr, requestCounterSlot),
		Cycles:               readUint64(db, addr, cyclesSlot),
	}, nil
}

// writeRecord stores every field of rec.
func writeRecord(db vm.StateDB, rec *Record) {
	addr := rec.Address
	writeBool(db, addr, initializedSlot, true)
	writeUint64(db, addr, bumpSlot, uint64(rec.Bump))
	writeUint64(db, addr, delayHoursSlot, uint64(rec.NextUpdateDelayHours))
	writeUint64(db, addr, dueAtSlot, rec.NextUpdateDueAt)
	writeUint64(db, addr, lastUpdateSlot, rec.LastUpdate)
	writeAddress(db, addr, mintSlot, rec.Mint)
	writeAddress(db, addr, functionSlot, rec.Function)
	writeAddress(db, addr, queueSlot, rec.Queue)
	writeAddress(db, addr, attestationSlot, rec.AttestationState)
	writeAddress(db, addr, activeRequestSlot, rec.ActiveRequest)
	writeUint64(db, addr, feeSlot, uint64(rec.CurrentFeeBP))
	writeUint64(db, addr, requestCounterSlot, rec.RequestCounter)
	writeUint64(db, addr, cyclesSlot, rec.Cycles)
}
