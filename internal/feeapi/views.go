package feeapi

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/token"
)

// ChainInfo describes the ledger a node serves.
type ChainInfo struct {
	ChainID uint64 `json:"chainId"`
	Slot    uint64 `json:"slot"`
}

// MintView is the JSON form of a mint. Amounts are decimal strings.
type MintView struct {
	Address                    common.Address `json:"address"`
	Decimals                   uint8          `json:"decimals"`
	MintAuthority              common.Address `json:"mintAuthority"`
	TransferFeeConfigAuthority common.Address `json:"transferFeeConfigAuthority"`
	WithdrawWithheldAuthority  common.Address `json:"withdrawWithheldAuthority"`
	TransferFeeBP              uint16         `json:"transferFeeBp"`
	MaximumFee                 uint64         `json:"maximumFee"`
	Supply                     string         `json:"supply"`
	Withheld                   string         `json:"withheld"`
}

// AccountView is the JSON form of a token account.
type AccountView struct {
	Address  common.Address `json:"address"`
	Mint     common.Address `json:"mint"`
	Owner    common.Address `json:"owner"`
	Amount   string         `json:"amount"`
	Withheld string         `json:"withheld"`
}

// BalanceView is a native balance.
type BalanceView struct {
	Address common.Address `json:"address"`
	Balance string         `json:"balance"`
}

// NonceView is the next nonce expected from an account.
type NonceView struct {
	Address common.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

// ErrorView is the body of every failed call.
type ErrorView struct {
	Error string `json:"error"`
}

func decimal(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.ToBig().String()
}

// NewMintView converts a mint.
func NewMintView(m *token.Mint) *MintView {
	return &MintView{
		Address:                    m.Address,
		Decimals:                   m.Decimals,
		MintAuthority:              m.MintAuthority,
		TransferFeeConfigAuthority: m.TransferFeeConfigAuthority,
		WithdrawWithheldAuthority:  m.WithdrawWithheldAuthority,
		TransferFeeBP:              m.TransferFeeBP,
		MaximumFee:                 m.MaximumFee,
		Supply:                     decimal(m.Supply),
		Withheld:                   decimal(m.Withheld),
	}
}

// NewAccountView converts a token account.
func NewAccountView(a *token.Account) *AccountView {
	return &AccountView{
		Address:  a.Address,
		Mint:     a.Mint,
		Owner:    a.Owner,
		Amount:   decimal(a.Amount),
		Withheld: decimal(a.Withheld),
	}
}
