package rawdb

import (
	"github.com/tos-network/feecycle/tosdb"
	"github.com/tos-network/feecycle/tosdb/leveldb"
	"github.com/tos-network/feecycle/tosdb/memorydb"
)

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() tosdb.Database {
	return memorydb.New()
}

// NewLevelDBDatabase creates a persistent key-value database backed by LevelDB.
func NewLevelDBDatabase(file string, cache int, handles int, readonly bool) (tosdb.Database, error) {
	return leveldb.New(file, cache, handles, readonly)
}
