package state

import (
	"errors"
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	// ErrNotEnoughFunds is returned when a balance would go negative
	ErrNotEnoughFunds = errors.New("not enough funds")

	// ErrBalanceOverflow is returned when a balance would exceed 2^256-1
	ErrBalanceOverflow = errors.New("balance overflow")

	errInvalidSnapshot = errors.New("invalid snapshot id")
)

// Txn is a reference of the state
type Txn struct {
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

// newTxn creates a new state reference
func newTxn(state *State) *Txn {
	return &Txn{
		snapshots: []*iradix.Tree{},
		txn:       state.root.Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (txn *Txn) Snapshot() int {
	t := txn.txn.CommitOnly()

	id := len(txn.snapshots)
	txn.snapshots = append(txn.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot, dropping every later snapshot
func (txn *Txn) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(txn.snapshots) {
		return fmt.Errorf("%w: %d", errInvalidSnapshot, id)
	}

	tree := txn.snapshots[id]
	txn.txn = tree.Txn()
	txn.snapshots = txn.snapshots[:id]

	return nil
}

// GetBalance returns the native balance of addr
func (txn *Txn) GetBalance(addr types.Address) *uint256.Int {
	return getBalance(txn.txn.Get, addr)
}

// SetBalance sets the native balance of addr
func (txn *Txn) SetBalance(addr types.Address, balance *uint256.Int) {
	if balance.IsZero() {
		txn.txn.Delete(balanceKey(addr))

		return
	}

	txn.txn.Insert(balanceKey(addr), balance.Clone())
}

// AddBalance credits amount to addr
func (txn *Txn) AddBalance(addr types.Address, amount *uint256.Int) error {
	res, overflow := new(uint256.Int).AddOverflow(txn.GetBalance(addr), amount)
	if overflow {
		return ErrBalanceOverflow
	}

	txn.SetBalance(addr, res)

	return nil
}

// SubBalance debits amount from addr
func (txn *Txn) SubBalance(addr types.Address, amount *uint256.Int) error {
	balance := txn.GetBalance(addr)
	if balance.Lt(amount) {
		return ErrNotEnoughFunds
	}

	txn.SetBalance(addr, balance.Sub(balance, amount))

	return nil
}

// Transfer moves amount of native value between two accounts
func (txn *Txn) Transfer(from, to types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	if err := txn.SubBalance(from, amount); err != nil {
		return err
	}

	return txn.AddBalance(to, amount)
}

// SetState change the state of an address
func (txn *Txn) SetState(addr types.Address, key, value types.Hash) {
	txn.set(storagePrefix, addr, key, value)
}

// GetState returns the state of the address at a given hash
func (txn *Txn) GetState(addr types.Address, key types.Hash) types.Hash {
	return getStorage(txn.txn.Get, addr, key)
}

// SetTransientState writes transaction scoped storage, discarded by ClearTransient
func (txn *Txn) SetTransientState(addr types.Address, key, value types.Hash) {
	txn.set(transientPrefix, addr, key, value)
}

// GetTransientState reads transaction scoped storage
func (txn *Txn) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	val, ok := txn.txn.Get(storageKey(transientPrefix, addr, key))
	if !ok {
		return types.ZeroHash
	}

	return val.(types.Hash) //nolint:forcetypeassert
}

// ClearTransient drops all transient storage
func (txn *Txn) ClearTransient() {
	txn.txn.DeletePrefix(transientPrefix)
}

func (txn *Txn) set(prefix []byte, addr types.Address, key, value types.Hash) {
	k := storageKey(prefix, addr, key)

	if value == types.ZeroHash {
		txn.txn.Delete(k)
	} else {
		txn.txn.Insert(k, value)
	}
}

// AddLog adds a new log
func (txn *Txn) AddLog(log *types.Log) {
	current := txn.Logs()

	logs := make([]*types.Log, len(current), len(current)+1)
	copy(logs, current)
	logs = append(logs, log)

	txn.txn.Insert(logIndex, logs)
}

// Logs returns the logs emitted so far
func (txn *Txn) Logs() []*types.Log {
	data, exists := txn.txn.Get(logIndex)
	if !exists {
		return nil
	}

	return data.([]*types.Log) //nolint:forcetypeassert
}

// TakeLogs returns the pending logs and removes them from the state
func (txn *Txn) TakeLogs() []*types.Log {
	logs := txn.Logs()
	txn.txn.Delete(logIndex)

	return logs
}

// Commit returns the resulting state. Transient storage and pending logs are
// never part of a committed state.
func (txn *Txn) Commit() *State {
	txn.ClearTransient()
	txn.txn.Delete(logIndex)

	return &State{root: txn.txn.Commit()}
}
