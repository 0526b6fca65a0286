package permit2

import (
	"math/big"

	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	tokenPermissionsTypeString = "TokenPermissions(address token,uint256 amount)"
	enterWitnessTypeString     = "EnterWitness(uint256 rollupChainId,address rollupRecipient)"
	exitWitnessTypeString      = "ExitWitness(address hostRecipient)"
	outputTypeString           = "Output(address token,uint256 amount,address recipient,uint32 chainId)"

	// EnterWitnessTypeString completes the permit type for an enter
	EnterWitnessTypeString = "EnterWitness witness)" + enterWitnessTypeString + tokenPermissionsTypeString
	// ExitWitnessTypeString completes the permit type for an exit
	ExitWitnessTypeString = "ExitWitness witness)" + exitWitnessTypeString + tokenPermissionsTypeString
	// OutputWitnessTypeString completes the batch permit type for an order
	OutputWitnessTypeString = "Output[] outputs)" + outputTypeString + tokenPermissionsTypeString
)

var (
	enterWitnessTypeHash = crypto.Keccak256Hash([]byte(enterWitnessTypeString))
	exitWitnessTypeHash  = crypto.Keccak256Hash([]byte(exitWitnessTypeString))
	outputTypeHash       = crypto.Keccak256Hash([]byte(outputTypeString))

	enterWitnessType = abi.MustNewType("tuple(bytes32 typeHash,uint256 rollupChainId,address rollupRecipient)")
	exitWitnessType  = abi.MustNewType("tuple(bytes32 typeHash,address hostRecipient)")
	outputType       = abi.MustNewType("tuple(bytes32 typeHash,address token,uint256 amount,address recipient,uint32 chainId)")
)

// Witness binds a permit signature to the application level intent it authorizes
type Witness struct {
	Hash       types.Hash
	TypeString string
}

// EnterWitness binds a permit to an enter of rollupChainID for rollupRecipient
func EnterWitness(rollupChainID *big.Int, rollupRecipient types.Address) Witness {
	return Witness{
		Hash:       keccakEncode(enterWitnessType, enterWitnessTypeHash, bigOrZero(rollupChainID), rollupRecipient),
		TypeString: EnterWitnessTypeString,
	}
}

// ExitWitness binds a permit to an exit towards hostRecipient
func ExitWitness(hostRecipient types.Address) Witness {
	return Witness{
		Hash:       keccakEncode(exitWitnessType, exitWitnessTypeHash, hostRecipient),
		TypeString: ExitWitnessTypeString,
	}
}

// HashOutput is the struct hash of a single order output
func HashOutput(o contractsapi.Output) types.Hash {
	return keccakEncode(outputType, outputTypeHash, o.Token, bigOrZero(o.Amount), o.Recipient, o.ChainID)
}

// OutputWitness binds a batch permit to the exact ordered list of outputs
func OutputWitness(outputs []contractsapi.Output) Witness {
	hashes := make([]byte, 0, len(outputs)*types.HashLength)
	for _, o := range outputs {
		hashes = append(hashes, HashOutput(o).Bytes()...)
	}

	return Witness{
		Hash:       crypto.Keccak256Hash(hashes),
		TypeString: OutputWitnessTypeString,
	}
}

// TransferDetails requests the full permitted amount of permit for to
func TransferDetails(permit contractsapi.PermitTransferFrom, to types.Address) contractsapi.SignatureTransferDetails {
	return contractsapi.SignatureTransferDetails{To: to, RequestedAmount: bigOrZero(permit.Permitted.Amount)}
}

// BatchTransferDetails requests the full permitted amount of every token of permit for to
func BatchTransferDetails(
	permit contractsapi.PermitBatchTransferFrom,
	to types.Address,
) []contractsapi.SignatureTransferDetails {
	details := make([]contractsapi.SignatureTransferDetails, len(permit.Permitted))
	for i, p := range permit.Permitted {
		details[i] = contractsapi.SignatureTransferDetails{To: to, RequestedAmount: bigOrZero(p.Amount)}
	}

	return details
}

// OutputTransferDetails pays every output to its recipient
func OutputTransferDetails(outputs []contractsapi.Output) []contractsapi.SignatureTransferDetails {
	details := make([]contractsapi.SignatureTransferDetails, len(outputs))
	for i, o := range outputs {
		details[i] = contractsapi.SignatureTransferDetails{To: o.Recipient, RequestedAmount: bigOrZero(o.Amount)}
	}

	return details
}
