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

import "time"

// Fee-schedule cycle parameters.
const (
	// GlobalSeed is the domain tag the schedule record address is derived from.
	GlobalSeed = "global"
	// RequestSeed and EscrowSeed tag the per-cycle randomness request and its escrow.
	RequestSeed = "request"
	EscrowSeed  = "escrow"
	// TokenAccountSeed tags token accounts derived for an owner and mint.
	TokenAccountSeed = "token-account"
	// AttestationStateSeed, QueueSeed and FunctionSeed tag the attestation
	// program's own records.
	AttestationStateSeed = "state"
	QueueSeed            = "queue"
	FunctionSeed         = "function"

	// SlotDuration is the ledger's native tick.
	SlotDuration = 400 * time.Millisecond
	// HourlySlots is the number of slots per hour (~1 hour at 400 ms/slot).
	HourlySlots uint64 = 9000
	// HoursPerCycle bounds the derived update delay to [1, HoursPerCycle].
	HoursPerCycle uint64 = 24
	// InitialUpdateDelaySlots is the delay before the first randomness
	// request becomes due after init (~2 seconds).
	InitialUpdateDelaySlots uint64 = 5

	// MaxRandValue is the exclusive upper bound of an accepted random result,
	// and the inclusive upper bound requested from the worker.
	MaxRandValue uint8 = 254
	// MinRandSample is the lower bound the worker samples from.
	MinRandSample uint8 = 1

	// InitialTransferFeeBP is the fee rate a schedule starts at (60%).
	InitialTransferFeeBP uint16 = 6000
	// TransferFeeStepBP and TransferFeeSteps define the derived fee ladder
	// {0, 1000, ..., 6000}.
	TransferFeeStepBP uint16 = 1000
	TransferFeeSteps  uint16 = 7
	// MaxTransferFeeBP is 100% in basis points.
	MaxTransferFeeBP uint16 = 10_000

	// MaxContainerParamsLen is the request parameter size hint handed to the
	// attested queue.
	MaxContainerParamsLen = 256
)
