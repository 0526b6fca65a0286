package runtime

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/types"
)

// GetUint reads a 256 bit storage word as a number
func GetUint(host Host, addr types.Address, slot types.Hash) *uint256.Int {
	word := host.GetStorage(addr, slot)

	return new(uint256.Int).SetBytes32(word[:])
}

// SetUint writes a number into a storage word
func SetUint(host Host, addr types.Address, slot types.Hash, v *uint256.Int) {
	host.SetStorage(addr, slot, v.Bytes32())
}

// GetBool reads a storage word as a boolean
func GetBool(host Host, addr types.Address, slot types.Hash) bool {
	return host.GetStorage(addr, slot) != types.ZeroHash
}

// SetBool writes a boolean storage word
func SetBool(host Host, addr types.Address, slot types.Hash, v bool) {
	var word types.Hash
	if v {
		word[31] = 1
	}

	host.SetStorage(addr, slot, word)
}

// GetAddress reads an address from the low 20 bytes of a storage word
func GetAddress(host Host, addr types.Address, slot types.Hash) types.Address {
	return types.BytesToAddress(host.GetStorage(addr, slot).Bytes())
}

// SetAddress writes an address into a storage word
func SetAddress(host Host, addr types.Address, slot types.Hash, v types.Address) {
	host.SetStorage(addr, slot, types.BytesToHash(v.Bytes()))
}

// ToUint256 converts an ABI decoded uint256. Decoded values always fit 256 bits.
func ToUint256(v *big.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}

	return uint256.MustFromBig(v)
}
