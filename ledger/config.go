package ledger

import "github.com/tos-network/feecycle/core"

// Config contains the ledger node settings.
type Config struct {
	// DataDir holds the state database. An empty DataDir keeps state in
	// memory.
	DataDir string

	// Database options
	DatabaseCache   int
	DatabaseHandles int `toml:"-"`
	// StateCache is the clean storage cache in megabytes.
	StateCache int

	// ManualSlots disables the slot clock; slots then only advance through
	// AdvanceSlot.
	ManualSlots bool `toml:",omitempty"`

	// The genesis written if the database is empty. Defaults to the
	// developer genesis of the node's keys.
	Genesis *core.Genesis `toml:",omitempty"`
}

// Defaults contains the default settings of the ledger node.
var Defaults = Config{
	DatabaseCache:   256,
	DatabaseHandles: 256,
	StateCache:      32,
}
