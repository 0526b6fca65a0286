package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	SubmitBlockMethod          = abi.MustNewMethod("function submitBlock(" + blockHeaderTuple + " header,uint8 v,bytes32 r,bytes32 s,bytes blockData)")            //nolint:all
	SubmitBlockBlobsMethod     = abi.MustNewMethod("function submitBlockBlobs(" + blockHeaderTuple + " header,uint8 v,bytes32 r,bytes32 s,uint256[] blobIndices)") //nolint:all
	BlockCommitmentMethod      = abi.MustNewMethod("function blockCommitment(" + blockHeaderTuple + " header,bytes blockData) returns (bytes32 commitment)")       //nolint:all
	AddSequencerMethod         = abi.MustNewMethod("function addSequencer(address sequencer)")                                                                     //nolint:all
	RemoveSequencerMethod      = abi.MustNewMethod("function removeSequencer(address sequencer)")                                                                  //nolint:all
	IsSequencerMethod          = abi.MustNewMethod("function isSequencer(address sequencer) returns (bool permissioned)")                                          //nolint:all
	NextSequenceMethod         = abi.MustNewMethod("function nextSequence(uint256 rollupChainId) returns (uint256 sequence)")                                      //nolint:all
	LastSubmittedAtBlockMethod = abi.MustNewMethod("function lastSubmittedAtBlock(uint256 rollupChainId) returns (uint256 blockNumber)")                           //nolint:all
)

type SubmitBlockFn struct {
	Header    BlockHeader `abi:"header"`
	V         uint8       `abi:"v"`
	R         types.Hash  `abi:"r"`
	S         types.Hash  `abi:"s"`
	BlockData []byte      `abi:"blockData"`
}

func (s *SubmitBlockFn) Sig() []byte {
	return SubmitBlockMethod.ID()
}

func (s *SubmitBlockFn) EncodeAbi() ([]byte, error) {
	return SubmitBlockMethod.Encode(s)
}

func (s *SubmitBlockFn) DecodeAbi(buf []byte) error {
	return decodeMethod(SubmitBlockMethod, buf, s)
}

type SubmitBlockBlobsFn struct {
	Header      BlockHeader `abi:"header"`
	V           uint8       `abi:"v"`
	R           types.Hash  `abi:"r"`
	S           types.Hash  `abi:"s"`
	BlobIndices []*big.Int  `abi:"blobIndices"`
}

func (s *SubmitBlockBlobsFn) Sig() []byte {
	return SubmitBlockBlobsMethod.ID()
}

func (s *SubmitBlockBlobsFn) EncodeAbi() ([]byte, error) {
	return SubmitBlockBlobsMethod.Encode(s)
}

func (s *SubmitBlockBlobsFn) DecodeAbi(buf []byte) error {
	return decodeMethod(SubmitBlockBlobsMethod, buf, s)
}

type BlockCommitmentFn struct {
	Header    BlockHeader `abi:"header"`
	BlockData []byte      `abi:"blockData"`
}

func (b *BlockCommitmentFn) Sig() []byte {
	return BlockCommitmentMethod.ID()
}

func (b *BlockCommitmentFn) EncodeAbi() ([]byte, error) {
	return BlockCommitmentMethod.Encode(b)
}

func (b *BlockCommitmentFn) DecodeAbi(buf []byte) error {
	return decodeMethod(BlockCommitmentMethod, buf, b)
}

// SequencerFn is the input of addSequencer, removeSequencer and isSequencer
type SequencerFn struct {
	Method    *abi.Method   `abi:"-"`
	Sequencer types.Address `abi:"sequencer"`
}

func (s *SequencerFn) Sig() []byte {
	return s.Method.ID()
}

func (s *SequencerFn) EncodeAbi() ([]byte, error) {
	return s.Method.Encode([]interface{}{s.Sequencer})
}

func (s *SequencerFn) DecodeAbi(buf []byte) error {
	return decodeMethod(s.Method, buf, s)
}

// ChainIDFn is the input of the per rollup chain views
type ChainIDFn struct {
	Method        *abi.Method `abi:"-"`
	RollupChainID *big.Int    `abi:"rollupChainId"`
}

func (c *ChainIDFn) Sig() []byte {
	return c.Method.ID()
}

func (c *ChainIDFn) EncodeAbi() ([]byte, error) {
	return c.Method.Encode([]interface{}{c.RollupChainID})
}

func (c *ChainIDFn) DecodeAbi(buf []byte) error {
	return decodeMethod(c.Method, buf, c)
}

var (
	BlockSubmittedEventType = abi.MustNewEvent("event BlockSubmitted(address indexed sequencer,uint256 indexed rollupChainId,uint256 indexed sequence,uint8 blockDataLocation,uint256 gasLimit,uint256 confirmBy,uint256 hostBlockNumber,address rewardAddress,bytes32 blockDataHash)") //nolint:all
	BlockDataEventType      = abi.MustNewEvent("event BlockData(uint256 indexed rollupChainId,bytes blockData)")                                                                                                                                                                        //nolint:all
	BlockBlobsEventType     = abi.MustNewEvent("event BlockBlobs(uint256 indexed rollupChainId,uint256[] blobIndices,bytes32[] blobHashes)")                                                                                                                                            //nolint:all
	SequencerSetEventType   = abi.MustNewEvent("event SequencerSet(address indexed sequencer,bool indexed permissioned)")                                                                                                                                                               //nolint:all

	blockSubmittedDataType = abi.MustNewType("tuple(uint8 blockDataLocation,uint256 gasLimit,uint256 confirmBy,uint256 hostBlockNumber,address rewardAddress,bytes32 blockDataHash)")
	blockDataDataType      = abi.MustNewType("tuple(bytes blockData)")
	blockBlobsDataType     = abi.MustNewType("tuple(uint256[] blobIndices,bytes32[] blobHashes)")
)

type BlockSubmittedEvent struct {
	Sequencer         types.Address `abi:"sequencer"`
	RollupChainID     *big.Int      `abi:"rollupChainId"`
	Sequence          *big.Int      `abi:"sequence"`
	BlockDataLocation uint8         `abi:"blockDataLocation"`
	GasLimit          *big.Int      `abi:"gasLimit"`
	ConfirmBy         *big.Int      `abi:"confirmBy"`
	HostBlockNumber   *big.Int      `abi:"hostBlockNumber"`
	RewardAddress     types.Address `abi:"rewardAddress"`
	BlockDataHash     types.Hash    `abi:"blockDataHash"`
}

func (b *BlockSubmittedEvent) Sig() ethgo.Hash {
	return BlockSubmittedEventType.ID()
}

func (b *BlockSubmittedEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, BlockSubmittedEventType,
		[]types.Hash{AddressTopic(b.Sequencer), Uint256Topic(b.RollupChainID), Uint256Topic(b.Sequence)},
		blockSubmittedDataType,
		[]interface{}{b.BlockDataLocation, b.GasLimit, b.ConfirmBy, b.HostBlockNumber, b.RewardAddress, b.BlockDataHash})
}

func (b *BlockSubmittedEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(BlockSubmittedEventType, log, b)
}

// Header rebuilds the signed header from the event fields
func (b *BlockSubmittedEvent) Header() *BlockHeader {
	return &BlockHeader{
		RollupChainID:   b.RollupChainID,
		Sequence:        b.Sequence,
		HostBlockNumber: b.HostBlockNumber,
		ConfirmBy:       b.ConfirmBy,
		GasLimit:        b.GasLimit,
		RewardAddress:   b.RewardAddress,
		BlockDataHash:   b.BlockDataHash,
	}
}

type BlockDataEvent struct {
	RollupChainID *big.Int `abi:"rollupChainId"`
	BlockData     []byte   `abi:"blockData"`
}

func (b *BlockDataEvent) Sig() ethgo.Hash {
	return BlockDataEventType.ID()
}

func (b *BlockDataEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, BlockDataEventType,
		[]types.Hash{Uint256Topic(b.RollupChainID)},
		blockDataDataType,
		[]interface{}{b.BlockData})
}

func (b *BlockDataEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(BlockDataEventType, log, b)
}

type BlockBlobsEvent struct {
	RollupChainID *big.Int     `abi:"rollupChainId"`
	BlobIndices   []*big.Int   `abi:"blobIndices"`
	BlobHashes    []types.Hash `abi:"blobHashes"`
}

func (b *BlockBlobsEvent) Sig() ethgo.Hash {
	return BlockBlobsEventType.ID()
}

func (b *BlockBlobsEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, BlockBlobsEventType,
		[]types.Hash{Uint256Topic(b.RollupChainID)},
		blockBlobsDataType,
		[]interface{}{b.BlobIndices, b.BlobHashes})
}

func (b *BlockBlobsEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(BlockBlobsEventType, log, b)
}

type SequencerSetEvent struct {
	Sequencer    types.Address `abi:"sequencer"`
	Permissioned bool          `abi:"permissioned"`
}

func (s *SequencerSetEvent) Sig() ethgo.Hash {
	return SequencerSetEventType.ID()
}

func (s *SequencerSetEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, SequencerSetEventType,
		[]types.Hash{AddressTopic(s.Sequencer), BoolTopic(s.Permissioned)}, nil, nil)
}

func (s *SequencerSetEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(SequencerSetEventType, log, s)
}
