package merkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math"

	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

var errEmptyTree = errors.New("tree must contain at least one leaf")

// MerkleTree is the structure for the Merkle tree.
type MerkleTree struct {
	// hasher is a pointer to the hashing struct (e.g., Keccak256)
	hasher hash.Hash
	// data is the data from which the Merkle tree is created
	data [][]byte
	// nodes are the leaf and branch nodes of the Merkle tree
	nodes [][]byte
}

// NewMerkleTree creates a new Merkle tree from the provided data and using the default hashing (Keccak256).
func NewMerkleTree(data [][]byte) (*MerkleTree, error) {
	return NewMerkleTreeWithHashing(data, crypto.NewKeccakState())
}

// NewMerkleTreeWithHashing creates a new Merkle tree from the provided data and hash type
func NewMerkleTreeWithHashing(data [][]byte, hash hash.Hash) (*MerkleTree, error) {
	if len(data) == 0 {
		return nil, errEmptyTree
	}

	branchesLen := int(math.Exp2(math.Ceil(math.Log2(float64(len(data))))))

	nodes := make([][]byte, 2*branchesLen)
	// create leaves
	for i := range data {
		hash.Reset()
		hash.Write(data[i])
		nodes[i+branchesLen] = hash.Sum(nil)
	}

	// padding leaves are zero hashes
	for i := len(data) + branchesLen; i < len(nodes); i++ {
		nodes[i] = make([]byte, types.HashLength)
	}

	// create branches
	for i := branchesLen - 1; i > 0; i-- {
		hash.Reset()
		hash.Write(nodes[i*2])
		hash.Write(nodes[i*2+1])
		nodes[i] = hash.Sum(nil)
	}

	tree := &MerkleTree{
		hasher: hash,
		nodes:  nodes,
		data:   data,
	}

	return tree, nil
}

// Hash is the Merkle Tree root hash
func (t *MerkleTree) Hash() types.Hash {
	return types.BytesToHash(t.nodes[1])
}

// LeafCount returns the number of data items in the tree
func (t *MerkleTree) LeafCount() int {
	return len(t.data)
}

// String implements the stringer interface
func (t *MerkleTree) String() string {
	return hex.EncodeToString(t.Hash().Bytes())
}

// GenerateProof generates the proof of membership for the leaf at the given index.
func (t *MerkleTree) GenerateProof(index uint64) ([]types.Hash, error) {
	if index >= uint64(len(t.data)) {
		return nil, fmt.Errorf("leaf index %d out of range, tree has %d leaves", index, len(t.data))
	}

	proofHashes := make([]types.Hash, 0, int(math.Ceil(math.Log2(float64(len(t.data))))))

	for i := index + uint64(len(t.nodes)/2); i > 1; i /= 2 {
		proofHashes = append(proofHashes, types.BytesToHash(t.nodes[i^1]))
	}

	return proofHashes, nil
}

// VerifyProof verifies a Merkle tree proof of membership for provided data using the default hash type (Keccak256)
func VerifyProof(index uint64, leaf []byte, proof []types.Hash, root types.Hash) error {
	return VerifyProofUsing(index, leaf, proof, root, crypto.NewKeccakState())
}

// VerifyProofUsing verifies a Merkle tree proof of membership for provided data using the provided hash type
func VerifyProofUsing(index uint64, leaf []byte, proof []types.Hash, root types.Hash, hash hash.Hash) error {
	proofHash := getProofHash(index, leaf, proof, hash)
	if !bytes.Equal(root.Bytes(), proofHash) {
		return fmt.Errorf("leaf with index %v, not a member of merkle tree. Merkle root hash: %v", index, root)
	}

	return nil
}

func getProofHash(index uint64, leaf []byte, proof []types.Hash, hash hash.Hash) []byte {
	hash.Reset()
	hash.Write(leaf)
	computedHash := hash.Sum(nil)

	for i := 0; i < len(proof); i++ {
		hash.Reset()

		if index%2 == 0 {
			hash.Write(computedHash)
			hash.Write(proof[i].Bytes())
		} else {
			hash.Write(proof[i].Bytes())
			hash.Write(computedHash)
		}

		computedHash = hash.Sum(nil)
		index /= 2
	}

	return computedHash
}
