package rawdb

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/params"
)

func TestStorageAccessors(t *testing.T) {
	db := NewMemoryDatabase()
	addr := common.Address{1}
	slot := common.Hash{2}

	if got := ReadStorage(db, addr, slot); got != (common.Hash{}) {
		t.Fatalf("missing word should read zero, got %v", got)
	}
	WriteStorage(db, addr, slot, common.Hash{31: 7})
	WriteStorage(db, common.Address{9}, slot, common.Hash{31: 8})
	if got := ReadStorage(db, addr, slot); got != (common.Hash{31: 7}) {
		t.Fatalf("unexpected word %v", got)
	}

	var n int
	want := common.Hash{31: 7}
	err := IterateStorage(db, addr, func(s, v common.Hash) bool {
		n++
		return s == slot && v == want
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if n != 1 {
		t.Fatalf("iterated %d words, want 1", n)
	}

	WriteStorage(db, addr, slot, common.Hash{})
	if has, _ := db.Has(storageKey(addr, slot)); has {
		t.Fatalf("zero word should be deleted")
	}
}

func TestBalanceAndMetadataAccessors(t *testing.T) {
	db := NewMemoryDatabase()
	addr := common.Address{3}

	WriteBalance(db, addr, uint256.NewInt(42))
	if got := ReadBalance(db, addr); got.Uint64() != 42 {
		t.Fatalf("balance: have %v want 42", got)
	}
	if ReadChainConfig(db) != nil {
		t.Fatalf("fresh database should have no config")
	}
	WriteChainConfig(db, params.TestChainConfig)
	if cfg := ReadChainConfig(db); cfg == nil || cfg.ChainID != params.TestChainConfig.ChainID {
		t.Fatalf("config round trip failed: %v", cfg)
	}
	WriteHeadSlot(db, 77)
	if ReadHeadSlot(db) != 77 {
		t.Fatalf("head slot round trip failed")
	}
}
