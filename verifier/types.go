package verifier

import (
	"math/big"

	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

// Verdict is the outcome of deriving the rollup block correlated with a host block
type Verdict struct {
	RollupChainID   uint64     `json:"rollupChainId"`
	HostBlock       uint64     `json:"hostBlock"`
	RollupBlock     uint64     `json:"rollupBlock"`
	RollupBlockHash types.Hash `json:"rollupBlockHash"`

	// Submission is nil when the host block carries no block for the rollup
	Submission *Submission `json:"submission,omitempty"`

	Deposits     int `json:"deposits"`
	Transacts    int `json:"transacts"`
	Transactions int `json:"transactions"`

	Orders   []*OrderVerdict `json:"orders"`
	Exits    []*Exit         `json:"exits"`
	ExitRoot types.Hash      `json:"exitRoot"`
}

// Valid reports whether the submission and every order of the block hold
func (v *Verdict) Valid() bool {
	if v.Submission != nil && !v.Submission.Valid() {
		return false
	}

	for _, o := range v.Orders {
		if !o.Valid() {
			return false
		}
	}

	return true
}

// Submission is a block commitment accepted by the host and checked again off chain
type Submission struct {
	TxHash        types.Hash          `json:"txHash"`
	Sequencer     types.Address       `json:"sequencer"`
	Signer        types.Address       `json:"signer"`
	Sequence      *big.Int            `json:"sequence"`
	Commitment    types.Hash          `json:"commitment"`
	Location      zenith.DataLocation `json:"location"`
	BlockDataHash types.Hash          `json:"blockDataHash"`
	Err           string              `json:"error,omitempty"`
}

// Valid reports whether the commitment matched its sequencer and data
func (s *Submission) Valid() bool {
	return s.Err == ""
}

const (
	KindOrder = "order"
	KindExit  = "exit"
)

// OrderVerdict tells whether the outputs of an order or an exit were filled
type OrderVerdict struct {
	TxHash  types.Hash            `json:"txHash"`
	Kind    string                `json:"kind"`
	Outputs []contractsapi.Output `json:"outputs"`
	Missing []contractsapi.Output `json:"missing,omitempty"`
}

// Valid reports whether every output was covered by a fill
func (o *OrderVerdict) Valid() bool {
	return len(o.Missing) == 0
}

// Exit is value leaving a rollup towards a host recipient. Token is the host
// token, the zero address for the native asset.
type Exit struct {
	Recipient types.Address `json:"recipient" abi:"recipient"`
	Token     types.Address `json:"token" abi:"token"`
	Amount    *big.Int      `json:"amount" abi:"amount"`
}

var exitLeafType = abi.MustNewType("tuple(address recipient, address token, uint256 amount)")

// Leaf is the ABI encoding of the exit, the merkle leaf data
func (e *Exit) Leaf() ([]byte, error) {
	return exitLeafType.Encode(e)
}

// ExitProof proves the membership of an exit in the exit root of a rollup block
type ExitProof struct {
	Exit  *Exit        `json:"exit"`
	Index uint64       `json:"index"`
	Root  types.Hash   `json:"root"`
	Proof []types.Hash `json:"proof"`
}
