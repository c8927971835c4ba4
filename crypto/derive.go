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
	"errors"

	"filippo.io/edwards25519"
	"github.com/tos-network/feecycle/common"
)

const (
	// MaxSeeds caps the number of seeds accepted by CreateProgramAddress.
	MaxSeeds = 16
	// MaxSeedLen caps the length of a single seed.
	MaxSeedLen = 32

	derivedAddressMarker = "tos.ProgramDerivedAddress"
)

var (
	ErrMaxSeedsExceeded   = errors.New("crypto: too many derivation seeds")
	ErrMaxSeedLenExceeded = errors.New("crypto: derivation seed too long")
	ErrAddressOnCurve     = errors.New("crypto: derived address is a valid public key")
	ErrNoViableBump       = errors.New("crypto: no viable bump seed")
)

// CreateProgramAddress derives an identity owned by program from seeds.
// The result is never a valid ed25519 point, so no private key can sign for
// it: only program, by re-deriving it, can act as that identity.
func CreateProgramAddress(program common.Address, seeds ...[]byte) (common.Address, error) {
	if len(seeds) > MaxSeeds {
		return common.Address{}, ErrMaxSeedsExceeded
	}
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return common.Address{}, ErrMaxSeedLenExceeded
		}
	}
	d := NewKeccakState()
	for _, s := range seeds {
		d.Write(s)
	}
	d.Write(program.Bytes())
	d.Write([]byte(derivedAddressMarker))

	var addr common.Address
	d.Read(addr[:])
	if IsOnCurve(addr.Bytes()) {
		return common.Address{}, ErrAddressOnCurve
	}
	return addr, nil
}

// FindProgramAddress searches, from 255 down, for the first bump that makes
// seeds||bump derive an off-curve address.
func FindProgramAddress(program common.Address, seeds ...[]byte) (common.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(program, withBump...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrAddressOnCurve) {
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b is the canonical encoding of an edwards25519
// point.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
