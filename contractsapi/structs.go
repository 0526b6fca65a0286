package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	blockHeaderTuple             = "tuple(uint256 rollupChainId,uint256 sequence,uint256 hostBlockNumber,uint256 confirmBy,uint256 gasLimit,address rewardAddress,bytes32 blockDataHash)"
	tokenPermissionsTuple        = "tuple(address token,uint256 amount)"
	permitTransferFromTuple      = "tuple(" + tokenPermissionsTuple + " permitted,uint256 nonce,uint256 deadline)"
	permitBatchTransferFromTuple = "tuple(" + tokenPermissionsTuple + "[] permitted,uint256 nonce,uint256 deadline)"
	transferDetailsTuple         = "tuple(address to,uint256 requestedAmount)"
	permit2Tuple                 = "tuple(" + permitTransferFromTuple + " permit,address owner,bytes signature)"
	permit2BatchTuple            = "tuple(" + permitBatchTransferFromTuple + " permit,address owner,bytes signature)"
	inputTuple                   = "tuple(address token,uint256 amount)"
	outputTuple                  = "tuple(address token,uint256 amount,address recipient,uint32 chainId)"
)

var (
	// OutputABIType is the abi type of a single order output
	OutputABIType = abi.MustNewType(outputTuple)
)

// BlockHeader is the rollup block header signed by a sequencer
type BlockHeader struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	Sequence        *big.Int      `abi:"sequence"`
	HostBlockNumber *big.Int      `abi:"hostBlockNumber"`
	ConfirmBy       *big.Int      `abi:"confirmBy"`
	GasLimit        *big.Int      `abi:"gasLimit"`
	RewardAddress   types.Address `abi:"rewardAddress"`
	BlockDataHash   types.Hash    `abi:"blockDataHash"`
}

// Copy returns a deep copy of the header
func (h *BlockHeader) Copy() *BlockHeader {
	cpy := *h
	cpy.RollupChainID = copyBig(h.RollupChainID)
	cpy.Sequence = copyBig(h.Sequence)
	cpy.HostBlockNumber = copyBig(h.HostBlockNumber)
	cpy.ConfirmBy = copyBig(h.ConfirmBy)
	cpy.GasLimit = copyBig(h.GasLimit)

	return &cpy
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}

type TokenPermissions struct {
	Token  types.Address `abi:"token"`
	Amount *big.Int      `abi:"amount"`
}

type PermitTransferFrom struct {
	Permitted TokenPermissions `abi:"permitted"`
	Nonce     *big.Int         `abi:"nonce"`
	Deadline  *big.Int         `abi:"deadline"`
}

type PermitBatchTransferFrom struct {
	Permitted []TokenPermissions `abi:"permitted"`
	Nonce     *big.Int           `abi:"nonce"`
	Deadline  *big.Int           `abi:"deadline"`
}

type SignatureTransferDetails struct {
	To              types.Address `abi:"to"`
	RequestedAmount *big.Int      `abi:"requestedAmount"`
}

// Permit2 is a signed single token transfer authorization
type Permit2 struct {
	Permit    PermitTransferFrom `abi:"permit"`
	Owner     types.Address      `abi:"owner"`
	Signature []byte             `abi:"signature"`
}

// Permit2Batch is a signed multi token transfer authorization
type Permit2Batch struct {
	Permit    PermitBatchTransferFrom `abi:"permit"`
	Owner     types.Address           `abi:"owner"`
	Signature []byte                  `abi:"signature"`
}

// Input is a token an order locks on its origin domain. The zero token is the native asset.
type Input struct {
	Token  types.Address `abi:"token"`
	Amount *big.Int      `abi:"amount"`
}

// Output is a token an order expects to receive on its destination domain
type Output struct {
	Token     types.Address `abi:"token"`
	Amount    *big.Int      `abi:"amount"`
	Recipient types.Address `abi:"recipient"`
	ChainID   uint32        `abi:"chainId"`
}
