// Package vm defines the state interface that native programs execute against.
package vm

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
)

// StateDB is a ledger database for full state querying.
type StateDB interface {
	GetBalance(common.Address) *uint256.Int
	AddBalance(common.Address, *uint256.Int)
	SubBalance(common.Address, *uint256.Int)

	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	// Snapshot returns an identifier for the current revision of the state.
	Snapshot() int
	// RevertToSnapshot reverts all state changes made since the given revision.
	RevertToSnapshot(int)
}
