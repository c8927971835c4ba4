package crypto

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/tos-network/feecycle/common"
)

func TestKeccak256Hash(t *testing.T) {
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := hex.EncodeToString(Keccak256(nil)); got != want {
		t.Fatalf("empty keccak: have %s want %s", got, want)
	}
	if !bytes.Equal(Keccak256([]byte("a"), []byte("b")), Keccak256Hash([]byte("ab")).Bytes()) {
		t.Fatalf("Keccak256 and Keccak256Hash disagree")
	}
}

func TestFindProgramAddressIsOffCurveAndStable(t *testing.T) {
	program := common.Address{0xaa}
	a1, bump1, err := FindProgramAddress(program, []byte("global"))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	a2, bump2, err := FindProgramAddress(program, []byte("global"))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a1 != a2 || bump1 != bump2 {
		t.Fatalf("derivation not deterministic: %v/%d vs %v/%d", a1, bump1, a2, bump2)
	}
	if IsOnCurve(a1.Bytes()) {
		t.Fatalf("derived address %v is on curve", a1)
	}
	re, err := CreateProgramAddress(program, []byte("global"), []byte{bump1})
	if err != nil || re != a1 {
		t.Fatalf("re-derivation mismatch: %v %v", re, err)
	}
	other, _, _ := FindProgramAddress(common.Address{0xbb}, []byte("global"))
	if other == a1 {
		t.Fatalf("different programs derived the same address")
	}
}

func TestCreateProgramAddressLimits(t *testing.T) {
	if _, err := CreateProgramAddress(common.Address{}, make([]byte, MaxSeedLen+1)); err != ErrMaxSeedLenExceeded {
		t.Fatalf("want ErrMaxSeedLenExceeded, got %v", err)
	}
	seeds := make([][]byte, MaxSeeds+1)
	if _, err := CreateProgramAddress(common.Address{}, seeds...); err != ErrMaxSeedsExceeded {
		t.Fatalf("want ErrMaxSeedsExceeded, got %v", err)
	}
}

func TestPublicKeysAreOnCurve(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !IsOnCurve(PubkeyToAddress(priv).Bytes()) {
		t.Fatalf("public key reported off curve")
	}
}

func TestSignVerifyAndKeyFile(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	digest := Keccak256([]byte("instruction"))
	sig := Sign(digest, priv)
	if !VerifySignature(PubkeyToAddress(priv), digest, sig) {
		t.Fatalf("signature did not verify")
	}
	if VerifySignature(common.Address{1}, digest, sig) {
		t.Fatalf("signature verified under wrong identity")
	}

	file := filepath.Join(t.TempDir(), "key")
	if err := SaveEd25519(file, priv); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadEd25519(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded, priv) {
		t.Fatalf("loaded key mismatch")
	}
}
