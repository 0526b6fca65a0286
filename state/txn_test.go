package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

func TestSnapshotUpdateData(t *testing.T) {
	t.Parallel()

	txn := NewState().Txn()

	txn.SetState(addr1, hash1, hash1)
	assert.Equal(t, hash1, txn.GetState(addr1, hash1))

	ss := txn.Snapshot()
	txn.SetState(addr1, hash1, hash2)
	assert.Equal(t, hash2, txn.GetState(addr1, hash1))

	require.NoError(t, txn.RevertToSnapshot(ss))
	assert.Equal(t, hash1, txn.GetState(addr1, hash1))

	// the reverted snapshot is consumed
	require.Error(t, txn.RevertToSnapshot(ss))
}

func TestNestedSnapshots(t *testing.T) {
	t.Parallel()

	txn := NewState().Txn()
	txn.SetBalance(addr1, uint256.NewInt(100))

	outer := txn.Snapshot()
	require.NoError(t, txn.Transfer(addr1, addr2, uint256.NewInt(10)))
	txn.AddLog(&types.Log{Address: addr1})

	inner := txn.Snapshot()
	require.NoError(t, txn.Transfer(addr1, addr2, uint256.NewInt(20)))
	txn.AddLog(&types.Log{Address: addr2})
	txn.SetTransientState(addr1, hash1, hash2)

	require.NoError(t, txn.RevertToSnapshot(inner))
	assert.Equal(t, uint64(90), txn.GetBalance(addr1).Uint64())
	assert.Equal(t, uint64(10), txn.GetBalance(addr2).Uint64())
	assert.Len(t, txn.Logs(), 1)
	assert.Equal(t, types.ZeroHash, txn.GetTransientState(addr1, hash1))

	require.NoError(t, txn.RevertToSnapshot(outer))
	assert.Equal(t, uint64(100), txn.GetBalance(addr1).Uint64())
	assert.True(t, txn.GetBalance(addr2).IsZero())
	assert.Empty(t, txn.Logs())
}

func TestBalances(t *testing.T) {
	t.Parallel()

	txn := NewState().Txn()

	require.ErrorIs(t, txn.SubBalance(addr1, uint256.NewInt(1)), ErrNotEnoughFunds)
	require.ErrorIs(t, txn.Transfer(addr1, addr2, uint256.NewInt(1)), ErrNotEnoughFunds)

	// zero transfers are always fine
	require.NoError(t, txn.Transfer(addr1, addr2, new(uint256.Int)))

	max := new(uint256.Int).SetAllOne()
	txn.SetBalance(addr1, max)
	require.ErrorIs(t, txn.AddBalance(addr1, uint256.NewInt(1)), ErrBalanceOverflow)

	// returned balances are copies
	b := txn.GetBalance(addr1)
	b.SetUint64(0)
	require.Equal(t, max, txn.GetBalance(addr1))
}

func TestCommit(t *testing.T) {
	t.Parallel()

	s := NewState()
	txn := s.Txn()

	txn.SetBalance(addr1, uint256.NewInt(5))
	txn.SetState(addr1, hash1, hash2)
	txn.SetTransientState(addr1, hash1, hash2)
	txn.AddLog(&types.Log{})

	committed := txn.Commit()

	// the original state is untouched
	assert.True(t, s.GetBalance(addr1).IsZero())
	assert.Equal(t, uint64(5), committed.GetBalance(addr1).Uint64())
	assert.Equal(t, hash2, committed.GetState(addr1, hash1))
	assert.Equal(t, []types.Address{addr1}, committed.Accounts())

	next := committed.Txn()
	assert.Equal(t, types.ZeroHash, next.GetTransientState(addr1, hash1))
	assert.Empty(t, next.Logs())

	// zero words are deleted
	next.SetState(addr1, hash1, types.ZeroHash)
	assert.Equal(t, types.ZeroHash, next.Commit().GetState(addr1, hash1))
}

func TestMappingSlot(t *testing.T) {
	t.Parallel()

	// keccak256(abi.encode(uint256(1), uint256(0)))
	require.Equal(t,
		types.StringToHash("0xada5013122d395ba3c54772283fb069b10426056ef8ca54750cb9bb552a59e7d"),
		MappingSlot(Uint64Key(1), Uint64Key(0)))

	require.Equal(t, Uint64Key(7), OffsetSlot(Uint64Key(5), 2))
	require.Equal(t, types.BytesToHash(addr1.Bytes()), AddressKey(addr1))
}
