package schedule

import (
	"encoding/binary"
	"fmt"

	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/params"
)

// Update is the outcome of one accepted random result.
type Update struct {
	DelayHours uint8  // hours until the next update, in [1, 24]
	DueAt      uint64 // slot from which the next callback is accepted
	FeeBP      uint16 // new transfer fee, in {0, 1000, ..., 6000}
}

// Derive computes the next update from the current slot and a raw random
// result. The result must be below params.MaxRandValue.
func Derive(now uint64, raw uint8) (Update, error) {
	if raw >= params.MaxRandValue {
		return Update{}, fmt.Errorf("%w: %d", ErrRandomResultOutOfBounds, raw)
	}
	// (now + raw) mod 24 without overflowing near the top of the slot range.
	hours := (now%params.HoursPerCycle+uint64(raw))%params.HoursPerCycle + 1
	return Update{
		DelayHours: uint8(hours),
		DueAt:      now + params.HourlySlots*hours,
		FeeBP:      uint16(raw) % params.TransferFeeSteps * params.TransferFeeStepBP,
	}, nil
}

// Address returns the schedule record address and its bump.
func Address() (common.Address, uint8, error) {
	return crypto.FindProgramAddress(params.FeeScheduleProgramAddress, []byte(params.GlobalSeed))
}

// RequestAddress returns the identity of the counter-th randomness request
// armed by schedule.
func RequestAddress(schedule common.Address, counter uint64) (common.Address, error) {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], counter)
	addr, _, err := crypto.FindProgramAddress(params.FeeScheduleProgramAddress,
		[]byte(params.RequestSeed), schedule.Bytes(), idx[:])
	return addr, err
}
