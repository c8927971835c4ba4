package common

import (
	"encoding/json"
	"testing"
)

func TestParseAddress(t *testing.T) {
	const full = "0xf81c536380b2dd5ef5c4ae95e1fae9b4fab2f5726677ecfa912d96b0b683e6a9"
	a, err := ParseAddress(full)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Hex() != full {
		t.Fatalf("hex mismatch: have %s want %s", a.Hex(), full)
	}
	if _, err := ParseAddress(full[:20]); err == nil {
		t.Fatalf("expected short address to fail")
	}
	if _, err := ParseAddress("0x" + string(make([]byte, 64))); err == nil {
		t.Fatalf("expected non-hex address to fail")
	}
}

func TestAddressJSON(t *testing.T) {
	a := Address{1, 2, 3}
	enc, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var dec Address
	if err := json.Unmarshal(enc, &dec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dec != a {
		t.Fatalf("round trip mismatch: have %v want %v", dec, a)
	}
}

func TestAddressIsZero(t *testing.T) {
	if !(Address{}).IsZero() {
		t.Fatalf("zero address not reported as zero")
	}
	if (Address{31: 1}).IsZero() {
		t.Fatalf("non-zero address reported as zero")
	}
}
