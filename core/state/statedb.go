// Package state provides a journaled view of the ledger state.
package state

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/rawdb"
	"github.com/tos-network/feecycle/core/vm"
)

// stateSnapshot is a point-in-time copy of the dirty overlay, used to support
// Snapshot/RevertToSnapshot.
type stateSnapshot struct {
	balances map[common.Address]*uint256.Int
	storage  map[common.Address]map[common.Hash]common.Hash
}

// StateDB implements vm.StateDB over a committed Database.
// Reads are served from the dirty overlay first, then the database.
// Writes go to the overlay only until Commit.
//
// StateDB is not safe for concurrent use; the ledger serializes access.
type StateDB struct {
	db *Database

	balances map[common.Address]*uint256.Int
	storage  map[common.Address]map[common.Hash]common.Hash

	snapshots []stateSnapshot
}

// New creates a state view on top of db.
func New(db *Database) *StateDB {
	return &StateDB{
		db:       db,
		balances: make(map[common.Address]*uint256.Int),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
	}
}

// Database returns the backing database.
func (s *StateDB) Database() *Database { return s.db }

// GetBalance returns a copy of the balance of addr.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	return new(uint256.Int).Set(s.getBalance(addr))
}

func (s *StateDB) getBalance(addr common.Address) *uint256.Int {
	if bal, ok := s.balances[addr]; ok {
		return bal
	}
	return s.db.Balance(addr)
}

// AddBalance adds amount to the balance of addr.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	s.balances[addr] = new(uint256.Int).Add(s.getBalance(addr), amount)
}

// SubBalance subtracts amount from the balance of addr. Callers check
// sufficiency first.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	s.balances[addr] = new(uint256.Int).Sub(s.getBalance(addr), amount)
}

// GetState returns a storage word of addr.
func (s *StateDB) GetState(addr common.Address, slot common.Hash) common.Hash {
	if slots, ok := s.storage[addr]; ok {
		if val, ok := slots[slot]; ok {
			return val
		}
	}
	return s.db.Storage(addr, slot)
}

// SetState writes a storage word of addr.
func (s *StateDB) SetState(addr common.Address, slot, value common.Hash) {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		s.storage[addr] = slots
	}
	slots[slot] = value
}

// Snapshot captures a deep copy of the current overlay state and returns an
// opaque ID that can be passed to RevertToSnapshot.
func (s *StateDB) Snapshot() int {
	snap := stateSnapshot{
		balances: make(map[common.Address]*uint256.Int, len(s.balances)),
		storage:  make(map[common.Address]map[common.Hash]common.Hash, len(s.storage)),
	}
	for addr, bal := range s.balances {
		snap.balances[addr] = new(uint256.Int).Set(bal)
	}
	for addr, slots := range s.storage {
		snapSlots := make(map[common.Hash]common.Hash, len(slots))
		for k, v := range slots {
			snapSlots[k] = v
		}
		snap.storage[addr] = snapSlots
	}
	id := len(s.snapshots)
	s.snapshots = append(s.snapshots, snap)
	return id
}

// RevertToSnapshot restores the overlay to the state captured by Snapshot(id).
// All snapshots taken after id are discarded.
func (s *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id >= len(s.snapshots) {
		return
	}
	snap := s.snapshots[id]
	s.balances = snap.balances
	s.storage = snap.storage
	s.snapshots = s.snapshots[:id]
	revertMeter.Inc()
}

// Commit writes the overlay to disk in one batch, records slot as the head
// slot and resets the overlay.
func (s *StateDB) Commit(slot uint64) error {
	batch := s.db.disk.NewBatch()
	var words, balances int
	for addr, slots := range s.storage {
		for k, v := range slots {
			rawdb.WriteStorage(batch, addr, k, v)
			words++
		}
	}
	for addr, bal := range s.balances {
		rawdb.WriteBalance(batch, addr, bal)
		balances++
	}
	rawdb.WriteHeadSlot(batch, slot)
	if err := batch.Write(); err != nil {
		return err
	}
	for addr, slots := range s.storage {
		for k, v := range slots {
			s.db.cacheStorage(addr, k, v)
		}
	}
	storageCommittedMeter.Add(float64(words))
	balanceCommittedMeter.Add(float64(balances))

	s.balances = make(map[common.Address]*uint256.Int)
	s.storage = make(map[common.Address]map[common.Hash]common.Hash)
	s.snapshots = nil
	return nil
}

// Discard drops every uncommitted change.
func (s *StateDB) Discard() {
	s.balances = make(map[common.Address]*uint256.Int)
	s.storage = make(map[common.Address]map[common.Hash]common.Hash)
	s.snapshots = nil
}

// Compile-time check that StateDB implements vm.StateDB.
var _ vm.StateDB = (*StateDB)(nil)
