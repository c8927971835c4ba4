package rawdb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/tosdb"
)

// ReadHeadSlot retrieves the latest committed slot, or 0 for a fresh ledger.
func ReadHeadSlot(db tosdb.KeyValueReader) uint64 {
	data, _ := db.Get(headSlotKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteHeadSlot stores the latest committed slot.
func WriteHeadSlot(db tosdb.KeyValueWriter, slot uint64) {
	if err := db.Put(headSlotKey, encodeSlotNumber(slot)); err != nil {
		log.Crit("Failed to store head slot", "err", err)
	}
}

// ReadChainConfig retrieves the stored chain config, or nil if none exists.
func ReadChainConfig(db tosdb.KeyValueReader) *params.ChainConfig {
	data, _ := db.Get(chainConfigKey)
	if len(data) == 0 {
		return nil
	}
	var config params.ChainConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Error("Invalid chain config JSON", "err", err)
		return nil
	}
	return &config
}

// WriteChainConfig writes the chain config to the database.
func WriteChainConfig(db tosdb.KeyValueWriter, cfg *params.ChainConfig) {
	if cfg == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Crit("Failed to JSON encode chain config", "err", err)
	}
	if err := db.Put(chainConfigKey, data); err != nil {
		log.Crit("Failed to store chain config", "err", err)
	}
}
