package verifier

import (
	"fmt"

	merkle "github.com/0xPolygon/polygon-zenith/merkle-tree"
	"github.com/0xPolygon/polygon-zenith/types"
)

// ExitRoot is the merkle root over the exits of a rollup block, the zero hash
// when there are none
func ExitRoot(exits []*Exit) (types.Hash, error) {
	tree, err := exitTree(exits)
	if err != nil || tree == nil {
		return types.ZeroHash, err
	}

	return tree.Hash(), nil
}

func exitTree(exits []*Exit) (*merkle.MerkleTree, error) {
	if len(exits) == 0 {
		return nil, nil
	}

	leaves := make([][]byte, len(exits))

	for i, exit := range exits {
		leaf, err := exit.Leaf()
		if err != nil {
			return nil, err
		}

		leaves[i] = leaf
	}

	return merkle.NewMerkleTree(leaves)
}

// GenerateExitProof proves the exit at index of a rollup block
func (s *Store) GenerateExitProof(rollupChainID, hostBlock, index uint64) (*ExitProof, error) {
	verdict, err := s.GetVerdict(rollupChainID, hostBlock)
	if err != nil {
		return nil, err
	}

	tree, err := exitTree(verdict.Exits)
	if err != nil {
		return nil, err
	}

	if tree == nil || index >= uint64(tree.LeafCount()) {
		return nil, fmt.Errorf("exit index %d out of range, block has %d exits", index, len(verdict.Exits))
	}

	proof, err := tree.GenerateProof(index)
	if err != nil {
		return nil, err
	}

	return &ExitProof{
		Exit:  verdict.Exits[index],
		Index: index,
		Root:  tree.Hash(),
		Proof: proof,
	}, nil
}

// VerifyExitProof checks p against its root
func VerifyExitProof(p *ExitProof) error {
	leaf, err := p.Exit.Leaf()
	if err != nil {
		return err
	}

	return merkle.VerifyProof(p.Index, leaf, p.Proof, p.Root)
}
