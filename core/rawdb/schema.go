package rawdb

import (
	"encoding/binary"

	"github.com/tos-network/feecycle/common"
)

// The fields below define the low level database schema prefixing.
var (
	// headSlotKey tracks the latest committed slot.
	headSlotKey = []byte("LastSlot")

	// chainConfigKey stores the chain configuration the ledger was created with.
	chainConfigKey = []byte("feecycle-config")

	storagePrefix = []byte("s") // storagePrefix + address + slot -> storage word
	balancePrefix = []byte("b") // balancePrefix + address -> balance
)

// storageKey = storagePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	buf := make([]byte, 0, len(storagePrefix)+common.AddressLength+common.HashLength)
	buf = append(buf, storagePrefix...)
	buf = append(buf, addr.Bytes()...)
	return append(buf, slot.Bytes()...)
}

// storagePrefixKey = storagePrefix + address
func storagePrefixKey(addr common.Address) []byte {
	return append(append([]byte{}, storagePrefix...), addr.Bytes()...)
}

// balanceKey = balancePrefix + address
func balanceKey(addr common.Address) []byte {
	return append(append([]byte{}, balancePrefix...), addr.Bytes()...)
}

// encodeSlotNumber encodes a slot number as big endian uint64
func encodeSlotNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}
