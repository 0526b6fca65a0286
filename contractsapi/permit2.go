package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	PermitWitnessTransferFromMethod      = abi.MustNewMethod("function permitWitnessTransferFrom(" + permitTransferFromTuple + " permit," + transferDetailsTuple + " transferDetails,address owner,bytes32 witness,string witnessTypeString,bytes signature)")        //nolint:all
	PermitBatchWitnessTransferFromMethod = abi.MustNewMethod("function permitWitnessTransferFrom(" + permitBatchTransferFromTuple + " permit," + transferDetailsTuple + "[] transferDetails,address owner,bytes32 witness,string witnessTypeString,bytes signature)") //nolint:all
	NonceBitmapMethod                    = abi.MustNewMethod("function nonceBitmap(address owner,uint256 wordPos) returns (uint256 bitmap)")                                                                                                                          //nolint:all
	InvalidateUnorderedNoncesMethod      = abi.MustNewMethod("function invalidateUnorderedNonces(uint256 wordPos,uint256 mask)")                                                                                                                                      //nolint:all
	DomainSeparatorMethod                = abi.MustNewMethod("function DOMAIN_SEPARATOR() returns (bytes32 separator)")                                                                                                                                               //nolint:all
)

// PermitWitnessTransferFromFn pulls a single token on behalf of a signed permit
type PermitWitnessTransferFromFn struct {
	Permit            PermitTransferFrom       `abi:"permit"`
	TransferDetails   SignatureTransferDetails `abi:"transferDetails"`
	Owner             types.Address            `abi:"owner"`
	Witness           types.Hash               `abi:"witness"`
	WitnessTypeString string                   `abi:"witnessTypeString"`
	Signature         []byte                   `abi:"signature"`
}

func (p *PermitWitnessTransferFromFn) Sig() []byte {
	return PermitWitnessTransferFromMethod.ID()
}

func (p *PermitWitnessTransferFromFn) EncodeAbi() ([]byte, error) {
	return PermitWitnessTransferFromMethod.Encode(p)
}

func (p *PermitWitnessTransferFromFn) DecodeAbi(buf []byte) error {
	return decodeMethod(PermitWitnessTransferFromMethod, buf, p)
}

// PermitBatchWitnessTransferFromFn pulls several tokens on behalf of a signed batch permit
type PermitBatchWitnessTransferFromFn struct {
	Permit            PermitBatchTransferFrom    `abi:"permit"`
	TransferDetails   []SignatureTransferDetails `abi:"transferDetails"`
	Owner             types.Address              `abi:"owner"`
	Witness           types.Hash                 `abi:"witness"`
	WitnessTypeString string                     `abi:"witnessTypeString"`
	Signature         []byte                     `abi:"signature"`
}

func (p *PermitBatchWitnessTransferFromFn) Sig() []byte {
	return PermitBatchWitnessTransferFromMethod.ID()
}

func (p *PermitBatchWitnessTransferFromFn) EncodeAbi() ([]byte, error) {
	return PermitBatchWitnessTransferFromMethod.Encode(p)
}

func (p *PermitBatchWitnessTransferFromFn) DecodeAbi(buf []byte) error {
	return decodeMethod(PermitBatchWitnessTransferFromMethod, buf, p)
}

type NonceBitmapFn struct {
	Owner   types.Address `abi:"owner"`
	WordPos *big.Int      `abi:"wordPos"`
}

func (n *NonceBitmapFn) Sig() []byte {
	return NonceBitmapMethod.ID()
}

func (n *NonceBitmapFn) EncodeAbi() ([]byte, error) {
	return NonceBitmapMethod.Encode(n)
}

func (n *NonceBitmapFn) DecodeAbi(buf []byte) error {
	return decodeMethod(NonceBitmapMethod, buf, n)
}

type InvalidateUnorderedNoncesFn struct {
	WordPos *big.Int `abi:"wordPos"`
	Mask    *big.Int `abi:"mask"`
}

func (i *InvalidateUnorderedNoncesFn) Sig() []byte {
	return InvalidateUnorderedNoncesMethod.ID()
}

func (i *InvalidateUnorderedNoncesFn) EncodeAbi() ([]byte, error) {
	return InvalidateUnorderedNoncesMethod.Encode(i)
}

func (i *InvalidateUnorderedNoncesFn) DecodeAbi(buf []byte) error {
	return decodeMethod(InvalidateUnorderedNoncesMethod, buf, i)
}

var (
	UnorderedNonceInvalidationEventType = abi.MustNewEvent("event UnorderedNonceInvalidation(address indexed owner,uint256 word,uint256 mask)") //nolint:all

	nonceInvalidationDataType = abi.MustNewType("tuple(uint256 word,uint256 mask)")
)

type UnorderedNonceInvalidationEvent struct {
	Owner types.Address `abi:"owner"`
	Word  *big.Int      `abi:"word"`
	Mask  *big.Int      `abi:"mask"`
}

func (u *UnorderedNonceInvalidationEvent) Sig() ethgo.Hash {
	return UnorderedNonceInvalidationEventType.ID()
}

func (u *UnorderedNonceInvalidationEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, UnorderedNonceInvalidationEventType,
		[]types.Hash{AddressTopic(u.Owner)},
		nonceInvalidationDataType, []interface{}{u.Word, u.Mask})
}

func (u *UnorderedNonceInvalidationEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(UnorderedNonceInvalidationEventType, log, u)
}
