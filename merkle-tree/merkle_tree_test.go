package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/helper/common"
	"github.com/0xPolygon/polygon-zenith/types"
)

func TestMerkleTree_VerifyProofs(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 3, 5, 8, 13} {
		data := make([][]byte, size)
		for i := range data {
			data[i] = common.EncodeUint64ToBytes(uint64(i) * 7)
		}

		tree, err := NewMerkleTree(data)
		require.NoError(t, err)
		require.Equal(t, size, tree.LeafCount())

		for i := range data {
			proof, err := tree.GenerateProof(uint64(i))
			require.NoError(t, err)
			require.NoError(t, VerifyProof(uint64(i), data[i], proof, tree.Hash()))

			// wrong index or leaf
			if size > 1 {
				require.Error(t, VerifyProof(uint64(i)^1, data[i], proof, tree.Hash()))
			}

			require.Error(t, VerifyProof(uint64(i), []byte("other"), proof, tree.Hash()))
		}

		_, err = tree.GenerateProof(uint64(size))
		require.Error(t, err)
	}
}

func TestMerkleTree_SingleLeaf(t *testing.T) {
	t.Parallel()

	tree, err := NewMerkleTree([][]byte{[]byte("exit")})
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash([]byte("exit")), tree.Hash())

	proof, err := tree.GenerateProof(0)
	require.NoError(t, err)
	require.Empty(t, proof)
}

func TestMerkleTree_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewMerkleTree(nil)
	require.ErrorIs(t, err, errEmptyTree)

	require.Error(t, VerifyProof(0, nil, nil, types.ZeroHash))
}
