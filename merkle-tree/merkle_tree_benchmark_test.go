package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/helper/common"
)

func Benchmark_MerkleTreeCreation(b *testing.B) {
	const numOfLeaves = 10_000

	data := make([][]byte, numOfLeaves)
	for i := uint64(0); i < numOfLeaves; i++ {
		data[i] = common.EncodeUint64ToBytes(i)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = NewMerkleTree(data)
	}
}

func Benchmark_GenerateProof(b *testing.B) {
	const numOfLeaves = 10_000

	data := make([][]byte, numOfLeaves)
	for i := uint64(0); i < numOfLeaves; i++ {
		data[i] = common.EncodeUint64ToBytes(i)
	}

	tree, err := NewMerkleTree(data)
	require.NoError(b, err)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = tree.GenerateProof(uint64(i % numOfLeaves))
	}
}
