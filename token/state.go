package token

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/params"
)

// fieldSlot hashes (kind || addr || 0x00 || field) for a per-entity slot.
func fieldSlot(kind string, addr common.Address, field string) common.Hash {
	key := make([]byte, 0, len(kind)+common.AddressLength+1+len(field))
	key = append(key, kind...)
	key = append(key, addr.Bytes()...)
	key = append(key, 0x00)
	key = append(key, field...)
	return common.BytesToHash(crypto.Keccak256(key))
}

func mintSlot(mint common.Address, field string) common.Hash {
	return fieldSlot("token.mint", mint, field)
}

func accountSlot(acct common.Address, field string) common.Hash {
	return fieldSlot("token.account", acct, field)
}

func get(db vm.StateDB, slot common.Hash) common.Hash {
	return db.GetState(params.TokenProgramAddress, slot)
}

func set(db vm.StateDB, slot, value common.Hash) {
	db.SetState(params.TokenProgramAddress, slot, value)
}

func readUint64(db vm.StateDB, slot common.Hash) uint64 {
	raw := get(db, slot)
	return binary.BigEndian.Uint64(raw[24:])
}

func writeUint64(db vm.StateDB, slot common.Hash, n uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[24:], n)
	set(db, slot, word)
}

func readBool(db vm.StateDB, slot common.Hash) bool {
	return get(db, slot)[31] != 0
}

func writeBool(db vm.StateDB, slot common.Hash, v bool) {
	var word common.Hash
	if v {
		word[31] = 1
	}
	set(db, slot, word)
}

func readAddress(db vm.StateDB, slot common.Hash) common.Address {
	return common.Address(get(db, slot))
}

func writeAddress(db vm.StateDB, slot common.Hash, addr common.Address) {
	set(db, slot, common.Hash(addr))
}

func readAmount(db vm.StateDB, slot common.Hash) *uint256.Int {
	raw := get(db, slot)
	return new(uint256.Int).SetBytes32(raw[:])
}

func writeAmount(db vm.StateDB, slot common.Hash, v *uint256.Int) {
	set(db, slot, common.Hash(v.Bytes32()))
}

func mintExists(db vm.StateDB, mint common.Address) bool {
	return readBool(db, mintSlot(mint, "exists"))
}

func readMint(db vm.StateDB, mint common.Address) *Mint {
	return &Mint{
		Address: mint,
		MintConfig: MintConfig{
			Decimals:                   uint8(readUint64(db, mintSlot(mint, "decimals"))),
			MintAuthority:              readAddress(db, mintSlot(mint, "mintAuthority")),
			TransferFeeConfigAuthority: readAddress(db, mintSlot(mint, "feeConfigAuthority")),
			WithdrawWithheldAuthority:  readAddress(db, mintSlot(mint, "withdrawAuthority")),
			TransferFeeBP:              uint16(readUint64(db, mintSlot(mint, "feeBP"))),
			MaximumFee:                 readUint64(db, mintSlot(mint, "maxFee")),
		},
		Supply:   readAmount(db, mintSlot(mint, "supply")),
		Withheld: readAmount(db, mintSlot(mint, "withheld")),
	}
}

func writeMintConfig(db vm.StateDB, mint common.Address, cfg *MintConfig) {
	writeBool(db, mintSlot(mint, "exists"), true)
	writeUint64(db, mintSlot(mint, "decimals"), uint64(cfg.Decimals))
	writeAddress(db, mintSlot(mint, "mintAuthority"), cfg.MintAuthority)
	writeAddress(db, mintSlot(mint, "feeConfigAuthority"), cfg.TransferFeeConfigAuthority)
	writeAddress(db, mintSlot(mint, "withdrawAuthority"), cfg.WithdrawWithheldAuthority)
	writeFee(db, mint, cfg.TransferFeeBP, cfg.MaximumFee)
}

func writeFee(db vm.StateDB, mint common.Address, feeBP uint16, maxFee uint64) {
	writeUint64(db, mintSlot(mint, "feeBP"), uint64(feeBP))
	writeUint64(db, mintSlot(mint, "maxFee"), maxFee)
}

func accountExists(db vm.StateDB, acct common.Address) bool {
	return readBool(db, accountSlot(acct, "exists"))
}

func readAccount(db vm.StateDB, acct common.Address) *Account {
	return &Account{
		Address:  acct,
		Mint:     readAddress(db, accountSlot(acct, "mint")),
		Owner:    readAddress(db, accountSlot(acct, "owner")),
		Amount:   readAmount(db, accountSlot(acct, "amount")),
		Withheld: readAmount(db, accountSlot(acct, "withheld")),
	}
}
