package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"hash"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btc_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	// ECDSASignatureLength indicates the byte length required to carry a signature with recovery id.
	// (64 bytes ECDSA signature + 1 byte recovery id)
	ECDSASignatureLength = 64 + 1

	// recoveryID is ECDSA signature recovery id
	recoveryID = byte(27)

	// recoveryIDOffset points to the byte offset within the signature that contains the recovery id.
	recoveryIDOffset = 64
)

var (
	errHashOfInvalidLength = errors.New("message hash of invalid length")
	errInvalidSignature    = errors.New("invalid signature")
	errInvalidRecoveryID   = errors.New("invalid signature recovery id")
)

// KeccakState wraps sha3.state. In addition to the usual hash methods, it also supports
// Read to get a variable amount of data from the hash state. Read is faster than Sum
// because it doesn't copy the internal state, but also modifies the internal state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// ParseECDSAPrivateKey parses bytes into a private key
func ParseECDSAPrivateKey(buf []byte) (*ecdsa.PrivateKey, error) {
	prv, _ := btcec.PrivKeyFromBytes(buf)

	return prv.ToECDSA(), nil
}

// MarshalECDSAPrivateKey serializes the private key's D value to a []byte
func MarshalECDSAPrivateKey(priv *ecdsa.PrivateKey) ([]byte, error) {
	btcPriv, err := convertToBtcPrivKey(priv)
	if err != nil {
		return nil, err
	}

	defer btcPriv.Zero()

	return btcPriv.Serialize(), nil
}

// GenerateECDSAKey generates a new key based on the secp256k1 elliptic curve.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(btcec.S256(), rand.Reader)
}

// MarshalPublicKey marshals a public key on the secp256k1 elliptic curve.
func MarshalPublicKey(pub *ecdsa.PublicKey) []byte {
	return elliptic.Marshal(btcec.S256(), pub.X, pub.Y)
}

// RecoverPubKey verifies the compact signature "signature" of "hash" for the secp256k1 curve.
func RecoverPubKey(signature, hash []byte) (*ecdsa.PublicKey, error) {
	if len(hash) != types.HashLength {
		return nil, errHashOfInvalidLength
	}

	signatureSize := len(signature)
	if signatureSize != ECDSASignatureLength {
		return nil, errInvalidSignature
	}

	if signature[recoveryIDOffset] > 1 {
		return nil, errInvalidRecoveryID
	}

	// Convert to btcec input format with 'recovery id' v at the beginning.
	btcsig := make([]byte, signatureSize)
	btcsig[0] = signature[signatureSize-1] + recoveryID
	copy(btcsig[1:], signature)

	pub, _, err := btc_ecdsa.RecoverCompact(btcsig, hash)
	if err != nil {
		return nil, err
	}

	return pub.ToECDSA(), nil
}

// Ecrecover returns the address that produced the [R || S || V] signature over hash
func Ecrecover(hash, sig []byte) (types.Address, error) {
	pub, err := RecoverPubKey(sig, hash)
	if err != nil {
		return types.ZeroAddress, err
	}

	return PubKeyToAddress(pub), nil
}

// Sign produces an ECDSA signature of the data in hash with the given
// private key on the secp256k1 curve.
//
// The produced signature is in the [R || S || V] format where V is 0 or 1.
func Sign(priv *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	if len(hash) != types.HashLength {
		return nil, fmt.Errorf("hash is required to be exactly %d bytes (%d)", types.HashLength, len(hash))
	}

	if priv.Curve != btcec.S256() {
		return nil, errors.New("private key curve is not secp256k1")
	}

	// convert from ecdsa.PrivateKey to btcec.PrivateKey
	btcPrivKey, err := convertToBtcPrivKey(priv)
	if err != nil {
		return nil, err
	}

	defer btcPrivKey.Zero()

	sig, err := btc_ecdsa.SignCompact(btcPrivKey, hash, false)
	if err != nil {
		return nil, err
	}

	// Convert to Ethereum signature format with 'recovery id' v at the end.
	v := sig[0] - recoveryID
	copy(sig, sig[1:])
	sig[recoveryIDOffset] = v

	return sig, nil
}

// SplitSignature splits an [R || S || V] signature into the (v, r, s) triple
// accepted by contracts, with v in {27, 28}
func SplitSignature(sig []byte) (v uint8, r, s types.Hash, err error) {
	if len(sig) != ECDSASignatureLength {
		return 0, r, s, errInvalidSignature
	}

	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])

	return sig[recoveryIDOffset] + recoveryID, r, s, nil
}

// JoinSignature is the inverse of SplitSignature. Values of v other than 27 and 28
// produce a signature that fails recovery.
func JoinSignature(v uint8, r, s types.Hash) []byte {
	sig := make([]byte, ECDSASignatureLength)
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[recoveryIDOffset] = v - recoveryID

	return sig
}

// Keccak256 calculates the Keccak256
func Keccak256(v ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, i := range v {
		h.Write(i)
	}

	return h.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(v ...[]byte) (hash types.Hash) {
	h := NewKeccakState()
	for _, b := range v {
		h.Write(b)
	}

	h.Read(hash[:]) //nolint:errcheck

	return hash
}

// NewKeccakState creates a new KeccakState
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState) //nolint:forcetypeassert
}

// PubKeyToAddress returns the Ethereum address of a public key
func PubKeyToAddress(pub *ecdsa.PublicKey) types.Address {
	buf := Keccak256(MarshalPublicKey(pub)[1:])[12:]

	return types.BytesToAddress(buf)
}

// BytesToECDSAPrivateKey reads the input byte array and constructs a private key if possible
func BytesToECDSAPrivateKey(input []byte) (*ecdsa.PrivateKey, error) {
	// The key file on disk should be encoded in Base16,
	// so it must be converted to a byte array
	decoded, err := hex.DecodeHex(string(input))
	if err != nil {
		return nil, err
	}

	if len(decoded) != 32 {
		return nil, fmt.Errorf("invalid private key length %d", len(decoded))
	}

	// Make sure the key is properly formatted
	if _, err := MarshalECDSAPrivateKey(&ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: btcec.S256()},
		D:         new(big.Int).SetBytes(decoded),
	}); err != nil {
		return nil, err
	}

	return ParseECDSAPrivateKey(decoded)
}

// convertToBtcPrivKey converts provided ECDSA private key to btc private key format
// used by btcec library
func convertToBtcPrivKey(priv *ecdsa.PrivateKey) (*btcec.PrivateKey, error) {
	var btcPriv btcec.PrivateKey

	overflow := btcPriv.Key.SetByteSlice(priv.D.Bytes())
	if overflow || btcPriv.Key.IsZero() {
		return nil, errors.New("invalid private key")
	}

	return &btcPriv, nil
}
