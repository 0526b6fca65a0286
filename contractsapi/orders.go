package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	InitiateMethod        = abi.MustNewMethod("function initiate(uint256 deadline," + inputTuple + "[] inputs," + outputTuple + "[] outputs)")                    //nolint:all
	InitiatePermit2Method = abi.MustNewMethod("function initiatePermit2(address tokenRecipient," + outputTuple + "[] outputs," + permit2BatchTuple + " permit2)") //nolint:all
	SweepMethod           = abi.MustNewMethod("function sweep(address recipient,address token,uint256 amount)")                                                   //nolint:all
	FillMethod            = abi.MustNewMethod("function fill(" + outputTuple + "[] outputs)")                                                                     //nolint:all
	FillPermit2Method     = abi.MustNewMethod("function fillPermit2(" + outputTuple + "[] outputs," + permit2BatchTuple + " permit2)")                            //nolint:all
)

type InitiateFn struct {
	Deadline *big.Int `abi:"deadline"`
	Inputs   []Input  `abi:"inputs"`
	Outputs  []Output `abi:"outputs"`
}

func (i *InitiateFn) Sig() []byte {
	return InitiateMethod.ID()
}

func (i *InitiateFn) EncodeAbi() ([]byte, error) {
	return InitiateMethod.Encode(i)
}

func (i *InitiateFn) DecodeAbi(buf []byte) error {
	return decodeMethod(InitiateMethod, buf, i)
}

type InitiatePermit2Fn struct {
	TokenRecipient types.Address `abi:"tokenRecipient"`
	Outputs        []Output      `abi:"outputs"`
	Permit2        Permit2Batch  `abi:"permit2"`
}

func (i *InitiatePermit2Fn) Sig() []byte {
	return InitiatePermit2Method.ID()
}

func (i *InitiatePermit2Fn) EncodeAbi() ([]byte, error) {
	return InitiatePermit2Method.Encode(i)
}

func (i *InitiatePermit2Fn) DecodeAbi(buf []byte) error {
	return decodeMethod(InitiatePermit2Method, buf, i)
}

// SweepFn claims the inputs held by the orders contract, the zero token is native value
type SweepFn struct {
	Recipient types.Address `abi:"recipient"`
	Token     types.Address `abi:"token"`
	Amount    *big.Int      `abi:"amount"`
}

func (s *SweepFn) Sig() []byte {
	return SweepMethod.ID()
}

func (s *SweepFn) EncodeAbi() ([]byte, error) {
	return SweepMethod.Encode(s)
}

func (s *SweepFn) DecodeAbi(buf []byte) error {
	return decodeMethod(SweepMethod, buf, s)
}

type FillFn struct {
	Outputs []Output `abi:"outputs"`
}

func (f *FillFn) Sig() []byte {
	return FillMethod.ID()
}

func (f *FillFn) EncodeAbi() ([]byte, error) {
	return FillMethod.Encode(f)
}

func (f *FillFn) DecodeAbi(buf []byte) error {
	return decodeMethod(FillMethod, buf, f)
}

type FillPermit2Fn struct {
	Outputs []Output     `abi:"outputs"`
	Permit2 Permit2Batch `abi:"permit2"`
}

func (f *FillPermit2Fn) Sig() []byte {
	return FillPermit2Method.ID()
}

func (f *FillPermit2Fn) EncodeAbi() ([]byte, error) {
	return FillPermit2Method.Encode(f)
}

func (f *FillPermit2Fn) DecodeAbi(buf []byte) error {
	return decodeMethod(FillPermit2Method, buf, f)
}

var (
	OrderEventType  = abi.MustNewEvent("event Order(uint256 deadline," + inputTuple + "[] inputs," + outputTuple + "[] outputs)") //nolint:all
	FilledEventType = abi.MustNewEvent("event Filled(" + outputTuple + "[] outputs)")                                             //nolint:all
	SweepEventType  = abi.MustNewEvent("event Sweep(address indexed recipient,address indexed token,uint256 amount)")             //nolint:all

	orderDataType  = abi.MustNewType("tuple(uint256 deadline," + inputTuple + "[] inputs," + outputTuple + "[] outputs)")
	filledDataType = abi.MustNewType("tuple(" + outputTuple + "[] outputs)")
)

type OrderEvent struct {
	Deadline *big.Int `abi:"deadline"`
	Inputs   []Input  `abi:"inputs"`
	Outputs  []Output `abi:"outputs"`
}

func (o *OrderEvent) Sig() ethgo.Hash {
	return OrderEventType.ID()
}

func (o *OrderEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, OrderEventType, nil,
		orderDataType, []interface{}{o.Deadline, o.Inputs, o.Outputs})
}

func (o *OrderEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(OrderEventType, log, o)
}

type FilledEvent struct {
	Outputs []Output `abi:"outputs"`
}

func (f *FilledEvent) Sig() ethgo.Hash {
	return FilledEventType.ID()
}

func (f *FilledEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, FilledEventType, nil, filledDataType, []interface{}{f.Outputs})
}

func (f *FilledEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(FilledEventType, log, f)
}

type SweepEvent struct {
	Recipient types.Address `abi:"recipient"`
	Token     types.Address `abi:"token"`
	Amount    *big.Int      `abi:"amount"`
}

func (s *SweepEvent) Sig() ethgo.Hash {
	return SweepEventType.ID()
}

func (s *SweepEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, SweepEventType,
		[]types.Hash{AddressTopic(s.Recipient), AddressTopic(s.Token)},
		amountDataType, []interface{}{s.Amount})
}

func (s *SweepEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(SweepEventType, log, s)
}
