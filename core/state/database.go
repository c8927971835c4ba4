package state

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/rawdb"
	"github.com/tos-network/feecycle/tosdb"
)

// defaultCleanCacheMB is the size of the clean storage cache when none is
// configured.
const defaultCleanCacheMB = 16

// Database wraps access to the persistent ledger state, fronted by a cache of
// clean storage words.
type Database struct {
	disk  tosdb.Database
	clean *fastcache.Cache
}

// NewDatabase creates a backing store for state with the default cache size.
func NewDatabase(disk tosdb.Database) *Database {
	return NewDatabaseWithCache(disk, defaultCleanCacheMB)
}

// NewDatabaseWithCache creates a backing store for state with a clean cache
// of cacheMB megabytes.
func NewDatabaseWithCache(disk tosdb.Database, cacheMB int) *Database {
	if cacheMB <= 0 {
		cacheMB = defaultCleanCacheMB
	}
	return &Database{
		disk:  disk,
		clean: fastcache.New(cacheMB * 1024 * 1024),
	}
}

// DiskDB returns the underlying key-value store.
func (db *Database) DiskDB() tosdb.Database { return db.disk }

func cacheKey(addr common.Address, slot common.Hash) []byte {
	key := make([]byte, 0, common.AddressLength+common.HashLength)
	key = append(key, addr.Bytes()...)
	return append(key, slot.Bytes()...)
}

// Storage returns the committed value of a storage word.
func (db *Database) Storage(addr common.Address, slot common.Hash) common.Hash {
	key := cacheKey(addr, slot)
	if enc, ok := db.clean.HasGet(nil, key); ok {
		return common.BytesToHash(enc)
	}
	value := rawdb.ReadStorage(db.disk, addr, slot)
	db.clean.Set(key, value.Bytes())
	return value
}

// Balance returns the committed balance of addr.
func (db *Database) Balance(addr common.Address) *uint256.Int {
	return rawdb.ReadBalance(db.disk, addr)
}

// cacheStorage refreshes the clean cache after a committed write.
func (db *Database) cacheStorage(addr common.Address, slot, value common.Hash) {
	db.clean.Set(cacheKey(addr, slot), value.Bytes())
}
