package types

import (
	"errors"
	"testing"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/crypto/ed25519"
)

func mustKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func testInstruction(signers ...common.Address) *Instruction {
	ix := &Instruction{ProgramID: common.Address{0xaa}, Data: []byte{1, 2, 3}}
	for _, s := range signers {
		ix.Accounts = append(ix.Accounts, NewAccountMeta(s, true))
	}
	ix.Accounts = append(ix.Accounts, NewReadonlyAccountMeta(common.Address{0xbb}, false))
	return ix
}

func TestSignersVerified(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	a1, a2 := crypto.PubkeyToAddress(k1), crypto.PubkeyToAddress(k2)
	signed := SignInstruction(7, testInstruction(a1, a2), k1, k2)

	set, err := signed.Signers(7)
	if err != nil {
		t.Fatalf("signers: %v", err)
	}
	if set.Cardinality() != 2 || !set.Contains(a1) || !set.Contains(a2) {
		t.Fatalf("unexpected signer set %v", set)
	}
}

func TestSignersWrongChain(t *testing.T) {
	k := mustKey(t)
	signed := SignInstruction(7, testInstruction(crypto.PubkeyToAddress(k)), k)
	if _, err := signed.Signers(8); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}

func TestSignersMissing(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	ix := testInstruction(crypto.PubkeyToAddress(k1), crypto.PubkeyToAddress(k2))
	signed := SignInstruction(1, ix, k1)
	if _, err := signed.Signers(1); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("want ErrMissingSignature, got %v", err)
	}
}

func TestSignersUnexpected(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	signed := SignInstruction(1, testInstruction(crypto.PubkeyToAddress(k1)), k1, k2)
	if _, err := signed.Signers(1); !errors.Is(err, ErrUnexpectedSigner) {
		t.Fatalf("want ErrUnexpectedSigner, got %v", err)
	}
}

func TestSigningHashCoversData(t *testing.T) {
	ix := testInstruction(common.Address{1})
	h1 := SigningHash(1, ix)
	mod := ix.Copy()
	mod.Data[0] ^= 0xff
	if h1 == SigningHash(1, mod) {
		t.Fatal("hash did not change with data")
	}
	mod = ix.Copy()
	mod.Accounts[0].IsWritable = false
	if h1 == SigningHash(1, mod) {
		t.Fatal("hash did not change with account flags")
	}
	mod = ix.Copy()
	mod.Nonce++
	if h1 == SigningHash(1, mod) {
		t.Fatal("hash did not change with nonce")
	}
	if h1 != SigningHash(1, ix) {
		t.Fatal("hash not deterministic")
	}
}

func TestNoAccounts(t *testing.T) {
	signed := &SignedInstruction{Instruction: &Instruction{}}
	if _, err := signed.Signers(1); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("want ErrNoAccounts, got %v", err)
	}
}

func TestNonceAccount(t *testing.T) {
	a1, a2 := common.Address{1}, common.Address{2}
	ix := testInstruction(a1, a2)
	ix.Accounts = append([]AccountMeta{NewReadonlyAccountMeta(common.Address{3}, false)}, ix.Accounts...)
	if addr, ok := ix.NonceAccount(); !ok || addr != a1 {
		t.Fatalf("nonce account = %s, %v; want %s", addr, ok, a1)
	}
	if _, ok := testInstruction().NonceAccount(); ok {
		t.Fatal("unsigned instruction has a nonce account")
	}
}
