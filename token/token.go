package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/sysaction"
)

// Program exposes the token operations to other programs. Authorities passed
// in are verified against the stored authority of the mint or account.
type Program struct{}

// AccountAddress returns the canonical token account of owner for mint.
func AccountAddress(owner, mint common.Address) (common.Address, error) {
	addr, _, err := crypto.FindProgramAddress(params.TokenProgramAddress,
		[]byte(params.TokenAccountSeed), owner.Bytes(), mint.Bytes())
	return addr, err
}

// CalculateFee returns the fee withheld from a transfer of amount. A
// maxFee of zero leaves the fee uncapped.
func CalculateFee(amount *uint256.Int, feeBP uint16, maxFee uint64) *uint256.Int {
	fee := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(feeBP)))
	fee.Div(fee, uint256.NewInt(uint64(params.MaxTransferFeeBP)))
	if maxFee != 0 && fee.Gt(uint256.NewInt(maxFee)) {
		fee.SetUint64(maxFee)
	}
	return fee
}

// CreateMint creates mint with cfg.
func (Program) CreateMint(db vm.StateDB, mint common.Address, cfg *MintConfig) error {
	if mintExists(db, mint) {
		return ErrMintExists
	}
	if cfg.TransferFeeBP > params.MaxTransferFeeBP {
		return ErrInvalidFee
	}
	writeMintConfig(db, mint, cfg)
	return nil
}

// Mint returns the stored state of mint.
func (Program) Mint(db vm.StateDB, mint common.Address) (*Mint, error) {
	if !mintExists(db, mint) {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return readMint(db, mint), nil
}

// Account returns the stored state of a token account.
func (Program) Account(db vm.StateDB, acct common.Address) (*Account, error) {
	if !accountExists(db, acct) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, acct)
	}
	return readAccount(db, acct), nil
}

// CreateAccount creates the canonical token account of owner for mint and
// returns its address. Creating an existing account is a no-op.
func (Program) CreateAccount(db vm.StateDB, mint, owner common.Address) (common.Address, error) {
	if !mintExists(db, mint) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	acct, err := AccountAddress(owner, mint)
	if err != nil {
		return common.Address{}, err
	}
	if accountExists(db, acct) {
		return acct, nil
	}
	writeBool(db, accountSlot(acct, "exists"), true)
	writeAddress(db, accountSlot(acct, "mint"), mint)
	writeAddress(db, accountSlot(acct, "owner"), owner)
	return acct, nil
}

// loadAccount returns the account acct after checking it belongs to mint.
func loadAccount(db vm.StateDB, mint, acct common.Address) (*Account, error) {
	if !accountExists(db, acct) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, acct)
	}
	a := readAccount(db, acct)
	if a.Mint != mint {
		return nil, fmt.Errorf("%w: %s", ErrMintMismatch, acct)
	}
	return a, nil
}

// MintTo issues amount new tokens into dest.
func (Program) MintTo(db vm.StateDB, mint, dest common.Address, authority sysaction.Authority, amount *uint256.Int) error {
	if !mintExists(db, mint) {
		return fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	m := readMint(db, mint)
	if err := authority.Verify(m.MintAuthority); err != nil {
		return err
	}
	a, err := loadAccount(db, mint, dest)
	if err != nil {
		return err
	}
	supply, overflow := new(uint256.Int).AddOverflow(m.Supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	writeAmount(db, mintSlot(mint, "supply"), supply)
	writeAmount(db, accountSlot(dest, "amount"), new(uint256.Int).Add(a.Amount, amount))
	return nil
}

// Transfer moves amount from src to dst. The mint's transfer fee is withheld
// in dst and returned.
func (Program) Transfer(db vm.StateDB, src, dst common.Address, authority sysaction.Authority, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if !accountExists(db, src) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, src)
	}
	from := readAccount(db, src)
	if err := authority.Verify(from.Owner); err != nil {
		return nil, err
	}
	if _, err := loadAccount(db, from.Mint, dst); err != nil {
		return nil, err
	}
	if from.Amount.Lt(amount) {
		return nil, ErrInsufficientFunds
	}
	m := readMint(db, from.Mint)
	fee := CalculateFee(amount, m.TransferFeeBP, m.MaximumFee)

	writeAmount(db, accountSlot(src, "amount"), new(uint256.Int).Sub(from.Amount, amount))
	// Read after the debit in case src == dst.
	to := readAccount(db, dst)
	received := new(uint256.Int).Sub(amount, fee)
	writeAmount(db, accountSlot(dst, "amount"), new(uint256.Int).Add(to.Amount, received))
	writeAmount(db, accountSlot(dst, "withheld"), new(uint256.Int).Add(to.Withheld, fee))
	return fee, nil
}

// SetTransferFee changes the transfer fee of mint. A maxFee of zero leaves
// the fee uncapped.
func (Program) SetTransferFee(db vm.StateDB, mint common.Address, authority sysaction.Authority, feeBP uint16, maxFee uint64) error {
	if !mintExists(db, mint) {
		return fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if feeBP > params.MaxTransferFeeBP {
		return fmt.Errorf("%w: %d bp", ErrInvalidFee, feeBP)
	}
	m := readMint(db, mint)
	if err := authority.Verify(m.TransferFeeConfigAuthority); err != nil {
		return err
	}
	writeFee(db, mint, feeBP, maxFee)
	log.Debug("Transfer fee set", "mint", mint, "bp", feeBP, "max", maxFee)
	return nil
}

// HarvestWithheldToMint moves the withheld amounts of sources into the
// mint. Anyone may harvest; sources of another mint are skipped.
func (Program) HarvestWithheldToMint(db vm.StateDB, mint common.Address, sources []common.Address) (*uint256.Int, error) {
	if !mintExists(db, mint) {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	total := new(uint256.Int)
	for _, src := range sources {
		a, err := loadAccount(db, mint, src)
		if err != nil {
			log.Debug("Skipping harvest source", "account", src, "err", err)
			continue
		}
		total.Add(total, a.Withheld)
		writeAmount(db, accountSlot(src, "withheld"), new(uint256.Int))
	}
	withheld := readAmount(db, mintSlot(mint, "withheld"))
	writeAmount(db, mintSlot(mint, "withheld"), withheld.Add(withheld, total))
	return total, nil
}

// WithdrawWithheldFromAccounts moves the withheld amounts of sources into
// dest.
func (Program) WithdrawWithheldFromAccounts(db vm.StateDB, mint, dest common.Address, authority sysaction.Authority, sources []common.Address) (*uint256.Int, error) {
	if !mintExists(db, mint) {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if err := authority.Verify(readMint(db, mint).WithdrawWithheldAuthority); err != nil {
		return nil, err
	}
	if _, err := loadAccount(db, mint, dest); err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for _, src := range sources {
		a, err := loadAccount(db, mint, src)
		if err != nil {
			return nil, err
		}
		total.Add(total, a.Withheld)
		writeAmount(db, accountSlot(src, "withheld"), new(uint256.Int))
	}
	d := readAccount(db, dest)
	writeAmount(db, accountSlot(dest, "amount"), d.Amount.Add(d.Amount, total))
	return total, nil
}

// WithdrawWithheldFromMint moves the amount harvested into mint to dest.
func (Program) WithdrawWithheldFromMint(db vm.StateDB, mint, dest common.Address, authority sysaction.Authority) (*uint256.Int, error) {
	if !mintExists(db, mint) {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	m := readMint(db, mint)
	if err := authority.Verify(m.WithdrawWithheldAuthority); err != nil {
		return nil, err
	}
	d, err := loadAccount(db, mint, dest)
	if err != nil {
		return nil, err
	}
	writeAmount(db, mintSlot(mint, "withheld"), new(uint256.Int))
	writeAmount(db, accountSlot(dest, "amount"), new(uint256.Int).Add(d.Amount, m.Withheld))
	return m.Withheld, nil
}

// Burn destroys amount tokens held in acct.
func (Program) Burn(db vm.StateDB, acct common.Address, authority sysaction.Authority, amount *uint256.Int) error {
	if !accountExists(db, acct) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, acct)
	}
	a := readAccount(db, acct)
	if err := authority.Verify(a.Owner); err != nil {
		return err
	}
	if a.Amount.Lt(amount) {
		return ErrInsufficientFunds
	}
	supply := readAmount(db, mintSlot(a.Mint, "supply"))
	writeAmount(db, accountSlot(acct, "amount"), new(uint256.Int).Sub(a.Amount, amount))
	writeAmount(db, mintSlot(a.Mint, "supply"), supply.Sub(supply, amount))
	return nil
}
