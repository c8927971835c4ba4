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

package params

import "github.com/tos-network/feecycle/common"

// Well-known program addresses.
var (
	// SystemProgramAddress owns plain wallet accounts and native balances.
	SystemProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000053595331") // "SYS1"

	// FeeScheduleProgramAddress is the program that owns the schedule record
	// and receives randomness callbacks.
	FeeScheduleProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000046454531") // "FEE1"

	// AttestationProgramAddress stores attestation queues, functions and
	// randomness requests via storage slots.
	AttestationProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000041545431") // "ATT1"

	// TokenProgramAddress stores mints and token accounts via storage slots.
	TokenProgramAddress = common.HexToAddress("0x00000000000000000000000000000000000000000000000000000000544b4e31") // "TKN1"
)
