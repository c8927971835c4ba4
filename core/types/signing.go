package types

import (
	"encoding/binary"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/crypto/ed25519"
)

const signingDomain = "feecycle.instruction.v2"

// SigningHash returns the digest signed by every signer of ix on the chain
// identified by chainID.
func SigningHash(chainID uint64, ix *Instruction) common.Hash {
	var word [8]byte
	d := crypto.NewKeccakState()
	d.Write([]byte(signingDomain))
	binary.BigEndian.PutUint64(word[:], chainID)
	d.Write(word[:])
	d.Write(ix.ProgramID.Bytes())
	binary.BigEndian.PutUint64(word[:], uint64(len(ix.Accounts)))
	d.Write(word[:])
	for _, acc := range ix.Accounts {
		var flags byte
		if acc.IsSigner {
			flags |= 1
		}
		if acc.IsWritable {
			flags |= 2
		}
		d.Write(acc.Address.Bytes())
		d.Write([]byte{flags})
	}
	binary.BigEndian.PutUint64(word[:], uint64(len(ix.Data)))
	d.Write(word[:])
	d.Write(ix.Data)
	binary.BigEndian.PutUint64(word[:], ix.Nonce)
	d.Write(word[:])

	var h common.Hash
	d.Read(h[:])
	return h
}

// SignInstruction signs ix with every key in keys and returns the envelope.
func SignInstruction(chainID uint64, ix *Instruction, keys ...ed25519.PrivateKey) *SignedInstruction {
	hash := SigningHash(chainID, ix)
	signed := &SignedInstruction{Instruction: ix}
	for _, key := range keys {
		signed.Signatures = append(signed.Signatures, Signature{
			Signer: crypto.PubkeyToAddress(key),
			Sig:    crypto.Sign(hash[:], key),
		})
	}
	return signed
}

// Signers verifies every signature of si and returns the set of verified
// signer addresses. Every account flagged as a signer must carry a valid
// signature, and signatures from accounts not flagged as signers are rejected.
func (si *SignedInstruction) Signers(chainID uint64) (mapset.Set, error) {
	ix := si.Instruction
	if ix == nil || len(ix.Accounts) == 0 {
		return nil, ErrNoAccounts
	}
	required := mapset.NewThreadUnsafeSet()
	for _, acc := range ix.Accounts {
		if acc.IsSigner {
			required.Add(acc.Address)
		}
	}
	hash := SigningHash(chainID, ix)
	verified := mapset.NewThreadUnsafeSet()
	for _, sig := range si.Signatures {
		if !required.Contains(sig.Signer) {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedSigner, sig.Signer)
		}
		if !crypto.VerifySignature(sig.Signer, hash[:], sig.Sig) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, sig.Signer)
		}
		verified.Add(sig.Signer)
	}
	if diff := required.Difference(verified); diff.Cardinality() != 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingSignature, diff.ToSlice())
	}
	return verified, nil
}
