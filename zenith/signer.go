package zenith

import (
	"crypto/ecdsa"
	"errors"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

// ErrSignatureLength is returned for signatures that are not 65 bytes long
var ErrSignatureLength = errors.New("signature must be 65 bytes, r | s | v")

// Signer attests block headers with a sequencer key
type Signer struct {
	key         *ecdsa.PrivateKey
	address     types.Address
	hostChainID uint64
	version     ProtocolVersion
}

// NewSigner creates a sequencer signer for commitments verified on hostChainID
func NewSigner(key *ecdsa.PrivateKey, hostChainID uint64, version ProtocolVersion) *Signer {
	return &Signer{
		key:         key,
		address:     crypto.PubKeyToAddress(&key.PublicKey),
		hostChainID: hostChainID,
		version:     version,
	}
}

// Address returns the sequencer identity
func (s *Signer) Address() types.Address {
	return s.address
}

// SignBlock signs the commitment of header over blockData
func (s *Signer) SignBlock(header *contractsapi.BlockHeader, blockData []byte) (*Signature, error) {
	return s.SignCommitment(BlockCommitment(s.version, s.hostChainID, header, blockData))
}

// SignCommitment signs a precomputed commitment
func (s *Signer) SignCommitment(commitment types.Hash) (*Signature, error) {
	sig, err := crypto.Sign(s.key, commitment.Bytes())
	if err != nil {
		return nil, err
	}

	v, r, ss, err := crypto.SplitSignature(sig)
	if err != nil {
		return nil, err
	}

	return &Signature{V: v, R: r, S: ss}, nil
}

// Signature is a recoverable secp256k1 signature with v in {27, 28}
type Signature struct {
	V uint8
	R types.Hash
	S types.Hash
}

// Bytes returns the signature as r | s | v
func (s *Signature) Bytes() []byte {
	return append(append(s.R.Bytes(), s.S.Bytes()...), s.V)
}

// ParseSignature decodes an r | s | v signature as produced by Bytes. A recovery
// id of 0 or 1 is accepted and normalized to 27 or 28.
func ParseSignature(raw []byte) (*Signature, error) {
	if len(raw) != crypto.ECDSASignatureLength {
		return nil, ErrSignatureLength
	}

	sig := &Signature{V: raw[64]}
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])

	if sig.V < 27 {
		sig.V += 27
	}

	return sig, nil
}

// RecoverSigner returns the address that signed commitment. A malformed
// signature recovers to the zero address.
func RecoverSigner(commitment types.Hash, sig *Signature) types.Address {
	signer, err := crypto.Ecrecover(commitment.Bytes(), crypto.JoinSignature(sig.V, sig.R, sig.S))
	if err != nil {
		return types.ZeroAddress
	}

	return signer
}
