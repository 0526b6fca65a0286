package state

import (
	"bytes"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	balancePrefix   = []byte("b")
	storagePrefix   = []byte("s")
	transientPrefix = []byte("t")

	// logIndex is the index of the logs in the tree
	logIndex = []byte("l")
)

// State is an immutable snapshot of a domain ledger: native balances,
// contract storage words and the pending logs of the running transaction.
type State struct {
	root *iradix.Tree
}

// NewState creates an empty state
func NewState() *State {
	return &State{root: iradix.New()}
}

// Txn opens a mutable view over the state
func (s *State) Txn() *Txn {
	return newTxn(s)
}

// GetBalance returns the committed native balance of addr
func (s *State) GetBalance(addr types.Address) *uint256.Int {
	return getBalance(s.root.Get, addr)
}

// GetState returns the committed storage word of addr at slot
func (s *State) GetState(addr types.Address, slot types.Hash) types.Hash {
	return getStorage(s.root.Get, addr, slot)
}

// Accounts returns every address holding a positive balance
func (s *State) Accounts() []types.Address {
	var res []types.Address

	s.root.Root().WalkPrefix(balancePrefix, func(k []byte, _ interface{}) bool {
		res = append(res, types.BytesToAddress(k[len(balancePrefix):]))

		return false
	})

	return res
}

type getter func(k []byte) (interface{}, bool)

func getBalance(get getter, addr types.Address) *uint256.Int {
	val, ok := get(balanceKey(addr))
	if !ok {
		return new(uint256.Int)
	}

	return val.(*uint256.Int).Clone() //nolint:forcetypeassert
}

func getStorage(get getter, addr types.Address, slot types.Hash) types.Hash {
	val, ok := get(storageKey(storagePrefix, addr, slot))
	if !ok {
		return types.ZeroHash
	}

	return val.(types.Hash) //nolint:forcetypeassert
}

func balanceKey(addr types.Address) []byte {
	return append(bytes.Clone(balancePrefix), addr.Bytes()...)
}

func storageKey(prefix []byte, addr types.Address, slot types.Hash) []byte {
	k := make([]byte, 0, len(prefix)+types.AddressLength+types.HashLength)
	k = append(k, prefix...)
	k = append(k, addr.Bytes()...)

	return append(k, slot.Bytes()...)
}

// MappingSlot returns the storage slot of key inside a mapping declared at slot,
// keccak256(key . slot)
func MappingSlot(key types.Hash, slot types.Hash) types.Hash {
	return crypto.Keccak256Hash(key.Bytes(), slot.Bytes())
}

// AddressKey left pads an address into a mapping key
func AddressKey(addr types.Address) types.Hash {
	return types.BytesToHash(addr.Bytes())
}

// Uint64Key encodes a number into a mapping key
func Uint64Key(n uint64) types.Hash {
	return types.BytesToHash(new(uint256.Int).SetUint64(n).Bytes())
}

// OffsetSlot returns slot + offset, the position of a struct member
func OffsetSlot(slot types.Hash, offset uint64) types.Hash {
	v := new(uint256.Int).SetBytes32(slot.Bytes())
	v.Add(v, uint256.NewInt(offset))

	return v.Bytes32()
}
