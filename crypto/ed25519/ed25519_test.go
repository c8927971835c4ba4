package ed25519

import (
	"bytes"
	stded25519 "crypto/ed25519"
	"testing"
)

func TestNewKeyFromSeedCompatibility(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, SeedSize)
	got := NewKeyFromSeed(seed)
	want := stded25519.NewKeyFromSeed(seed)
	if !bytes.Equal(got, want) {
		t.Fatalf("private key mismatch\nwant=%x\n got=%x", want, got)
	}
}

func TestSignVerify(t *testing.T) {
	priv := NewKeyFromSeed(bytes.Repeat([]byte{0x11}, SeedSize))
	pub := PublicFromPrivate(priv)
	msg := []byte("feecycle-callback")
	sig := Sign(priv, msg)

	if !Verify(pub, msg, sig) {
		t.Fatal("Verify returned false")
	}
	badSig := append([]byte(nil), sig...)
	badSig[0] ^= 0x80
	if Verify(pub, msg, badSig) {
		t.Fatal("Verify accepted a tampered signature")
	}
	if Verify(pub[:10], msg, sig) {
		t.Fatal("Verify accepted a truncated public key")
	}
}
