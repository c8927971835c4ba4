package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/rawdb"
)

func newTestState() (*StateDB, *Database) {
	db := NewDatabase(rawdb.NewMemoryDatabase())
	return New(db), db
}

func TestSnapshotRevert(t *testing.T) {
	st, _ := newTestState()
	a := common.Address{1}
	slot := common.Hash{2}

	st.SetState(a, slot, common.Hash{31: 1})
	st.AddBalance(a, uint256.NewInt(10))

	id := st.Snapshot()
	st.SetState(a, slot, common.Hash{31: 2})
	st.SetState(common.Address{9}, slot, common.Hash{31: 3})
	st.SubBalance(a, uint256.NewInt(4))
	st.RevertToSnapshot(id)

	if got := st.GetState(a, slot); got != (common.Hash{31: 1}) {
		t.Fatalf("storage not reverted: %v", got)
	}
	if got := st.GetState(common.Address{9}, slot); got != (common.Hash{}) {
		t.Fatalf("new word survived revert: %v", got)
	}
	if got := st.GetBalance(a); got.Uint64() != 10 {
		t.Fatalf("balance not reverted: %v", got)
	}
}

func TestNestedSnapshots(t *testing.T) {
	st, _ := newTestState()
	a := common.Address{1}
	slot := common.Hash{}

	outer := st.Snapshot()
	st.SetState(a, slot, common.Hash{31: 1})
	inner := st.Snapshot()
	st.SetState(a, slot, common.Hash{31: 2})

	st.RevertToSnapshot(inner)
	if got := st.GetState(a, slot); got != (common.Hash{31: 1}) {
		t.Fatalf("inner revert: %v", got)
	}
	st.RevertToSnapshot(outer)
	if got := st.GetState(a, slot); got != (common.Hash{}) {
		t.Fatalf("outer revert: %v", got)
	}
}

func TestCommitPersists(t *testing.T) {
	st, db := newTestState()
	a := common.Address{7}
	slot := common.Hash{1}

	st.SetState(a, slot, common.Hash{31: 5})
	st.AddBalance(a, uint256.NewInt(99))
	if err := st.Commit(12); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := rawdb.ReadStorage(db.DiskDB(), a, slot); got != (common.Hash{31: 5}) {
		t.Fatalf("storage not on disk: %v", got)
	}
	if rawdb.ReadHeadSlot(db.DiskDB()) != 12 {
		t.Fatalf("head slot not recorded")
	}

	fresh := New(db)
	if got := fresh.GetState(a, slot); got != (common.Hash{31: 5}) {
		t.Fatalf("fresh view missed committed word: %v", got)
	}
	if got := fresh.GetBalance(a); got.Uint64() != 99 {
		t.Fatalf("fresh view missed committed balance: %v", got)
	}
}

func TestDiscard(t *testing.T) {
	st, _ := newTestState()
	a := common.Address{3}
	st.SetState(a, common.Hash{}, common.Hash{31: 1})
	st.Discard()
	if got := st.GetState(a, common.Hash{}); got != (common.Hash{}) {
		t.Fatalf("discarded write visible: %v", got)
	}
}
