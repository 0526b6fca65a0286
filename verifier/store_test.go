package verifier

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "verdicts.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStore_Verdicts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	verdicts := []*Verdict{
		{RollupChainID: 17, HostBlock: 2, RollupBlock: 2},
		{RollupChainID: 17, HostBlock: 1, RollupBlock: 1, Submission: &Submission{
			Sequencer: user,
			Sequence:  big.NewInt(4),
			Location:  zenith.BlobLocation,
			Err:       "bad",
		}},
		{RollupChainID: 18, HostBlock: 1, RollupBlock: 1},
		{RollupChainID: 17, HostBlock: 256, RollupBlock: 256},
	}

	require.NoError(t, store.PutVerdicts(verdicts))
	require.NoError(t, store.PutVerdicts(nil))

	v, err := store.GetVerdict(17, 1)
	require.NoError(t, err)
	require.NotNil(t, v.Submission)
	assert.Equal(t, user, v.Submission.Sequencer)
	assert.Equal(t, big.NewInt(4), v.Submission.Sequence)
	assert.Equal(t, zenith.BlobLocation, v.Submission.Location)
	assert.False(t, v.Valid())

	_, err = store.GetVerdict(17, 3)
	require.ErrorIs(t, err, ErrVerdictNotFound)

	chain17, err := store.Verdicts(17)
	require.NoError(t, err)
	require.Len(t, chain17, 3)

	for i, hostBlock := range []uint64{1, 2, 256} {
		assert.Equal(t, hostBlock, chain17[i].HostBlock)
	}

	chain18, err := store.Verdicts(18)
	require.NoError(t, err)
	require.Len(t, chain18, 1)

	none, err := store.Verdicts(19)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestExitRoot_Empty(t *testing.T) {
	t.Parallel()

	root, err := ExitRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, types.ZeroHash, root)
}

// Every exit of a block proves against the stored exit root
func TestProperty_ExitProofs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	hostBlock := uint64(0)

	rapid.Check(t, func(tt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(tt, "exits")

		exits := make([]*Exit, n)
		for i := range exits {
			exits[i] = &Exit{
				Recipient: types.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(tt, "recipient")),
				Token:     types.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(tt, "token")),
				Amount:    new(big.Int).SetUint64(rapid.Uint64().Draw(tt, "amount")),
			}
		}

		root, err := ExitRoot(exits)
		require.NoError(tt, err)

		hostBlock++
		require.NoError(tt, store.PutVerdicts([]*Verdict{{RollupChainID: 17, HostBlock: hostBlock, Exits: exits, ExitRoot: root}}))

		index := rapid.IntRange(0, n-1).Draw(tt, "index")

		proof, err := store.GenerateExitProof(17, hostBlock, uint64(index))
		require.NoError(tt, err)
		require.Equal(tt, root, proof.Root)
		require.NoError(tt, VerifyExitProof(proof))

		// a proof does not carry over to another exit
		other := *proof.Exit
		other.Amount = new(big.Int).Add(other.Amount, big.NewInt(1))
		proof.Exit = &other
		require.Error(tt, VerifyExitProof(proof))
	})
}
