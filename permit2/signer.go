package permit2

import (
	"crypto/ecdsa"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

// Signer produces permits on behalf of a token owner
type Signer struct {
	key     *ecdsa.PrivateKey
	owner   types.Address
	chainID uint64
	permit2 types.Address
}

// NewSigner creates a signer for permits verified by the Permit2 deployment
// at permit2 on chainID
func NewSigner(key *ecdsa.PrivateKey, chainID uint64, permit2 types.Address) *Signer {
	return &Signer{
		key:     key,
		owner:   crypto.PubKeyToAddress(&key.PublicKey),
		chainID: chainID,
		permit2: permit2,
	}
}

// Owner returns the address the permits are signed for
func (s *Signer) Owner() types.Address {
	return s.owner
}

// SignPermit authorizes spender to pull permit once for the intent described by witness
func (s *Signer) SignPermit(
	permit contractsapi.PermitTransferFrom,
	spender types.Address,
	witness Witness,
) (contractsapi.Permit2, error) {
	sig, err := s.sign(HashPermitWitness(permit, spender, witness))
	if err != nil {
		return contractsapi.Permit2{}, err
	}

	return contractsapi.Permit2{Permit: permit, Owner: s.owner, Signature: sig}, nil
}

// SignBatchPermit authorizes spender to pull every token of permit once for
// the intent described by witness
func (s *Signer) SignBatchPermit(
	permit contractsapi.PermitBatchTransferFrom,
	spender types.Address,
	witness Witness,
) (contractsapi.Permit2Batch, error) {
	sig, err := s.sign(HashBatchPermitWitness(permit, spender, witness))
	if err != nil {
		return contractsapi.Permit2Batch{}, err
	}

	return contractsapi.Permit2Batch{Permit: permit, Owner: s.owner, Signature: sig}, nil
}

func (s *Signer) sign(structHash types.Hash) ([]byte, error) {
	digest := TypedDataHash(DomainSeparator(s.chainID, s.permit2), structHash)

	sig, err := crypto.Sign(s.key, digest.Bytes())
	if err != nil {
		return nil, err
	}

	v, r, sv, err := crypto.SplitSignature(sig)
	if err != nil {
		return nil, err
	}

	return append(append(r.Bytes(), sv.Bytes()...), v), nil
}
