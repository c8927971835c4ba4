// Package token implements the token program: mints with a configurable
// transfer fee, token accounts that withhold that fee on receipt, and the
// privileged operations that change the fee and collect withheld amounts.
package token

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
)

// Sentinel errors returned by token operations.
var (
	ErrMintExists        = errors.New("token: mint already exists")
	ErrMintNotFound      = errors.New("token: mint not found")
	ErrAccountNotFound   = errors.New("token: account not found")
	ErrMintMismatch      = errors.New("token: account belongs to a different mint")
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrInvalidFee        = errors.New("token: transfer fee out of range")
	ErrInvalidAmount     = errors.New("token: invalid amount")
	ErrSupplyOverflow    = errors.New("token: supply overflow")
)

// MintConfig is the initial configuration of a mint.
type MintConfig struct {
	Decimals                   uint8
	MintAuthority              common.Address
	TransferFeeConfigAuthority common.Address
	WithdrawWithheldAuthority  common.Address
	TransferFeeBP              uint16
	MaximumFee                 uint64 // 0 means uncapped
}

// Mint is the stored state of a mint.
type Mint struct {
	Address common.Address `json:"address"`
	MintConfig
	Supply   *uint256.Int `json:"supply"`
	Withheld *uint256.Int `json:"withheld"` // harvested from accounts, awaiting withdrawal
}

// Account is the stored state of a token account.
type Account struct {
	Address  common.Address `json:"address"`
	Mint     common.Address `json:"mint"`
	Owner    common.Address `json:"owner"`
	Amount   *uint256.Int   `json:"amount"`
	Withheld *uint256.Int   `json:"withheld"`
}

// TransferPayload is the payload of a token_transfer action.
type TransferPayload struct {
	Amount uint64 `json:"amount"`
}
