// Package schedule implements the fee schedule program. A singleton record
// tracks when the next fee update is due and the current transfer fee of the
// governed mint. Each accepted randomness callback derives a new fee and
// delay, applies the fee to the mint and arms the request for the next cycle.
package schedule

import (
	"errors"

	"github.com/tos-network/feecycle/common"
)

// Sentinel errors returned by the schedule program.
var (
	ErrRequestNotReady         = errors.New("schedule: request not ready")
	ErrRandomResultOutOfBounds = errors.New("schedule: random result out of bounds")
	ErrAuthenticityMismatch    = errors.New("schedule: authenticity mismatch")
	ErrExternalService         = errors.New("schedule: external service failure")
	ErrAlreadyInitialized      = errors.New("schedule: already initialized")
	ErrNotInitialized          = errors.New("schedule: not initialized")
	ErrAccountMismatch         = errors.New("schedule: account mismatch")
	ErrInsufficientFunding     = errors.New("schedule: payer balance below funding")
)

// Record is the schedule record.
type Record struct {
	Address              common.Address `json:"address"`
	Bump                 uint8          `json:"bump"`
	NextUpdateDelayHours uint8          `json:"nextUpdateDelayHours"`
	NextUpdateDueAt      uint64         `json:"nextUpdateDueAt"`
	LastUpdate           uint64         `json:"lastUpdate"`
	Mint                 common.Address `json:"mint"`
	Function             common.Address `json:"function"`
	Queue                common.Address `json:"queue"`
	AttestationState     common.Address `json:"attestationState"`
	ActiveRequest        common.Address `json:"activeRequest"` // zero when none is armed
	CurrentFeeBP         uint16         `json:"currentFeeBp"`
	RequestCounter       uint64         `json:"requestCounter"`
	Cycles               uint64         `json:"cycles"`
}

// HasActiveRequest reports whether a request is armed.
func (r *Record) HasActiveRequest() bool { return !r.ActiveRequest.IsZero() }

// InitPayload is the payload of a schedule_init action.
type InitPayload struct {
	// Funding is moved from the payer to the schedule record to pay the
	// request fees of later cycles.
	Funding uint64 `json:"funding"`
}
