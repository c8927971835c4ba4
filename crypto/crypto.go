// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

// SignatureLength indicates the byte length required to carry a signature.
const SignatureLength = ed25519.SignatureSize

var errInvalidKeyLength = errors.New("invalid private key length")

// KeccakState wraps sha3.state. In addition to the usual hash methods, it also supports
// Read to get a variable amount of data from the hash state.
type KeccakState interface {
	io.Writer
	Sum([]byte) []byte
	Reset()
	Read([]byte) (int, error)
}

// NewKeccakState creates a new KeccakState
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(b)
	return b
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(h[:])
	return h
}

// GenerateKey creates a new ed25519 signing key.
func GenerateKey() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	return priv, err
}

// ToEd25519 builds a private key from a 32 byte seed or a 64 byte expanded key.
func ToEd25519(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), nil
	}
	return nil, fmt.Errorf("%w: %d", errInvalidKeyLength, len(raw))
}

// PubkeyToAddress returns the identity of the key.
func PubkeyToAddress(priv ed25519.PrivateKey) common.Address {
	return common.BytesToAddress(ed25519.PublicFromPrivate(priv))
}

// Sign signs digest with priv.
func Sign(digest []byte, priv ed25519.PrivateKey) []byte {
	return ed25519.Sign(priv, digest)
}

// VerifySignature checks that sig is a signature of digest by the key whose
// identity is signer.
func VerifySignature(signer common.Address, digest, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(signer.Bytes()), digest, sig)
}

// LoadEd25519 loads an ed25519 seed from the given file, hex encoded.
func LoadEd25519(file string) (ed25519.PrivateKey, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	line, err := bufio.NewReader(fd).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(line), "0x"))
	if err != nil {
		return nil, err
	}
	return ToEd25519(raw)
}

// SaveEd25519 saves the seed of priv to the given file with restrictive
// permissions. The key data is saved hex-encoded.
func SaveEd25519(file string, priv ed25519.PrivateKey) error {
	k := hex.EncodeToString(priv.Seed())
	return os.WriteFile(file, []byte(k+"\n"), 0600)
}
