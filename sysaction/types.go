// Package sysaction implements the native program instruction protocol.
//
// Every instruction's data begins with an 8-byte action discriminator derived
// from the action name, followed by an action-specific payload. The ledger
// looks up the handler registered for the instruction's program and calls
// Execute, which applies the handler atomically.
package sysaction

import (
	"encoding/hex"

	"github.com/tos-network/feecycle/crypto"
)

// DiscriminatorLength is the size of the action tag prefixed to instruction data.
const DiscriminatorLength = 8

// ActionKind identifies the type of a program action.
type ActionKind [DiscriminatorLength]byte

// NewActionKind derives the discriminator of the named action.
func NewActionKind(name string) ActionKind {
	var k ActionKind
	copy(k[:], crypto.Keccak256([]byte("action:"+name)))
	return k
}

// String returns the registered name of k, or its hex form when unknown.
func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "0x" + hex.EncodeToString(k[:])
}

var actionNames = make(map[ActionKind]string)

func newAction(name string) ActionKind {
	k := NewActionKind(name)
	actionNames[k] = name
	return k
}

var (
	// Fee schedule program
	ActionScheduleInit               = newAction("schedule_init")
	ActionTriggerUpdate              = newAction("trigger_update")
	ActionCollectAndBurnFromAccounts = newAction("collect_and_burn_from_accounts")
	ActionCollectAndBurnFromMint     = newAction("collect_and_burn_from_mint")

	// Token program
	ActionTokenCreateAccount = newAction("token_create_account")
	ActionTokenTransfer      = newAction("token_transfer")
	ActionTokenHarvest       = newAction("token_harvest_withheld")

	// Attestation program
	ActionFunctionSetEnclaveSigner = newAction("function_set_enclave_signer")
)

// SysAction is a decoded instruction body.
type SysAction struct {
	Action  ActionKind
	Payload []byte
}
