package rawdb

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/tosdb"
)

// ReadStorage retrieves a single storage word of addr. Missing words read as
// the zero word.
func ReadStorage(db tosdb.KeyValueReader, addr common.Address, slot common.Hash) common.Hash {
	data, _ := db.Get(storageKey(addr, slot))
	return common.BytesToHash(data)
}

// WriteStorage stores a storage word. Zero words are deleted.
func WriteStorage(db tosdb.KeyValueWriter, addr common.Address, slot, value common.Hash) {
	var err error
	if value == (common.Hash{}) {
		err = db.Delete(storageKey(addr, slot))
	} else {
		err = db.Put(storageKey(addr, slot), value.Bytes())
	}
	if err != nil {
		log.Crit("Failed to store storage word", "addr", addr, "slot", slot, "err", err)
	}
}

// IterateStorage calls fn for every stored word of addr until fn returns false.
func IterateStorage(db tosdb.Iteratee, addr common.Address, fn func(slot, value common.Hash) bool) error {
	prefix := storagePrefixKey(addr)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+common.HashLength {
			continue
		}
		if !fn(common.BytesToHash(key[len(prefix):]), common.BytesToHash(it.Value())) {
			break
		}
	}
	return it.Error()
}

// ReadBalance retrieves the native balance of addr.
func ReadBalance(db tosdb.KeyValueReader, addr common.Address) *uint256.Int {
	data, _ := db.Get(balanceKey(addr))
	return new(uint256.Int).SetBytes(data)
}

// WriteBalance stores the native balance of addr. Zero balances are deleted.
func WriteBalance(db tosdb.KeyValueWriter, addr common.Address, balance *uint256.Int) {
	var err error
	if balance.IsZero() {
		err = db.Delete(balanceKey(addr))
	} else {
		err = db.Put(balanceKey(addr), balance.Bytes())
	}
	if err != nil {
		log.Crit("Failed to store balance", "addr", addr, "err", err)
	}
}
