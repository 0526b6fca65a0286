package permit2

import (
	"math/big"

	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	domainName = "Permit2"

	permitWitnessTransferFromStub      = "PermitWitnessTransferFrom(TokenPermissions permitted,address spender,uint256 nonce,uint256 deadline,"
	permitBatchWitnessTransferFromStub = "PermitBatchWitnessTransferFrom(TokenPermissions[] permitted,address spender,uint256 nonce,uint256 deadline,"
)

var (
	domainTypeHash           = crypto.Keccak256Hash([]byte("EIP712Domain(string name,uint256 chainId,address verifyingContract)"))
	domainNameHash           = crypto.Keccak256Hash([]byte(domainName))
	tokenPermissionsTypeHash = crypto.Keccak256Hash([]byte("TokenPermissions(address token,uint256 amount)"))

	domainType           = abi.MustNewType("tuple(bytes32 typeHash,bytes32 name,uint256 chainId,address verifyingContract)")
	tokenPermissionsType = abi.MustNewType("tuple(bytes32 typeHash,address token,uint256 amount)")
	permitType           = abi.MustNewType("tuple(bytes32 typeHash,bytes32 permitted,address spender,uint256 nonce,uint256 deadline,bytes32 witness)")
)

// DomainSeparator returns the EIP-712 domain of the Permit2 deployment at verifyingContract
func DomainSeparator(chainID uint64, verifyingContract types.Address) types.Hash {
	return keccakEncode(domainType, domainTypeHash, domainNameHash, new(big.Int).SetUint64(chainID), verifyingContract)
}

// TypedDataHash returns the digest signed for structHash under domainSeparator
func TypedDataHash(domainSeparator, structHash types.Hash) types.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())
}

func hashTokenPermissions(p contractsapi.TokenPermissions) types.Hash {
	return keccakEncode(tokenPermissionsType, tokenPermissionsTypeHash, p.Token, bigOrZero(p.Amount))
}

// HashPermitWitness is the struct hash of a single token permit bound to spender and witness
func HashPermitWitness(
	permit contractsapi.PermitTransferFrom,
	spender types.Address,
	witness Witness,
) types.Hash {
	typeHash := crypto.Keccak256Hash([]byte(permitWitnessTransferFromStub + witness.TypeString))

	return keccakEncode(permitType, typeHash, hashTokenPermissions(permit.Permitted), spender,
		bigOrZero(permit.Nonce), bigOrZero(permit.Deadline), witness.Hash)
}

// HashBatchPermitWitness is the struct hash of a batch permit bound to spender and witness
func HashBatchPermitWitness(
	permit contractsapi.PermitBatchTransferFrom,
	spender types.Address,
	witness Witness,
) types.Hash {
	typeHash := crypto.Keccak256Hash([]byte(permitBatchWitnessTransferFromStub + witness.TypeString))

	hashes := make([]byte, 0, len(permit.Permitted)*types.HashLength)
	for _, p := range permit.Permitted {
		hashes = append(hashes, hashTokenPermissions(p).Bytes()...)
	}

	return keccakEncode(permitType, typeHash, crypto.Keccak256Hash(hashes), spender,
		bigOrZero(permit.Nonce), bigOrZero(permit.Deadline), witness.Hash)
}

// keccakEncode hashes the abi encoding of a static tuple
func keccakEncode(typ *abi.Type, values ...interface{}) types.Hash {
	buf, err := abi.Encode(values, typ)
	if err != nil {
		// the tuples are static and the values are typed by the callers
		panic(err)
	}

	return crypto.Keccak256Hash(buf)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
