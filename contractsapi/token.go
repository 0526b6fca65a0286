package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	TransferMethod     = abi.MustNewMethod("function transfer(address to,uint256 amount) returns (bool success)")                  //nolint:all
	TransferFromMethod = abi.MustNewMethod("function transferFrom(address from,address to,uint256 amount) returns (bool success)") //nolint:all
	ApproveMethod      = abi.MustNewMethod("function approve(address spender,uint256 amount) returns (bool success)")              //nolint:all
	BalanceOfMethod    = abi.MustNewMethod("function balanceOf(address account) returns (uint256 balance)")                        //nolint:all
	AllowanceMethod    = abi.MustNewMethod("function allowance(address owner,address spender) returns (uint256 remaining)")        //nolint:all
	TotalSupplyMethod  = abi.MustNewMethod("function totalSupply() returns (uint256 supply)")                                      //nolint:all
	BurnMethod         = abi.MustNewMethod("function burn(uint256 amount)")                                                        //nolint:all
	MintMethod         = abi.MustNewMethod("function mint(address to,uint256 amount)")                                             //nolint:all
)

type TransferFn struct {
	To     types.Address `abi:"to"`
	Amount *big.Int      `abi:"amount"`
}

func (t *TransferFn) Sig() []byte {
	return TransferMethod.ID()
}

func (t *TransferFn) EncodeAbi() ([]byte, error) {
	return TransferMethod.Encode(t)
}

func (t *TransferFn) DecodeAbi(buf []byte) error {
	return decodeMethod(TransferMethod, buf, t)
}

type TransferFromFn struct {
	From   types.Address `abi:"from"`
	To     types.Address `abi:"to"`
	Amount *big.Int      `abi:"amount"`
}

func (t *TransferFromFn) Sig() []byte {
	return TransferFromMethod.ID()
}

func (t *TransferFromFn) EncodeAbi() ([]byte, error) {
	return TransferFromMethod.Encode(t)
}

func (t *TransferFromFn) DecodeAbi(buf []byte) error {
	return decodeMethod(TransferFromMethod, buf, t)
}

type ApproveFn struct {
	Spender types.Address `abi:"spender"`
	Amount  *big.Int      `abi:"amount"`
}

func (a *ApproveFn) Sig() []byte {
	return ApproveMethod.ID()
}

func (a *ApproveFn) EncodeAbi() ([]byte, error) {
	return ApproveMethod.Encode(a)
}

func (a *ApproveFn) DecodeAbi(buf []byte) error {
	return decodeMethod(ApproveMethod, buf, a)
}

type BalanceOfFn struct {
	Account types.Address `abi:"account"`
}

func (b *BalanceOfFn) Sig() []byte {
	return BalanceOfMethod.ID()
}

func (b *BalanceOfFn) EncodeAbi() ([]byte, error) {
	return BalanceOfMethod.Encode(b)
}

func (b *BalanceOfFn) DecodeAbi(buf []byte) error {
	return decodeMethod(BalanceOfMethod, buf, b)
}

type AllowanceFn struct {
	Owner   types.Address `abi:"owner"`
	Spender types.Address `abi:"spender"`
}

func (a *AllowanceFn) Sig() []byte {
	return AllowanceMethod.ID()
}

func (a *AllowanceFn) EncodeAbi() ([]byte, error) {
	return AllowanceMethod.Encode(a)
}

func (a *AllowanceFn) DecodeAbi(buf []byte) error {
	return decodeMethod(AllowanceMethod, buf, a)
}

type BurnFn struct {
	Amount *big.Int `abi:"amount"`
}

func (b *BurnFn) Sig() []byte {
	return BurnMethod.ID()
}

func (b *BurnFn) EncodeAbi() ([]byte, error) {
	return BurnMethod.Encode(b)
}

func (b *BurnFn) DecodeAbi(buf []byte) error {
	return decodeMethod(BurnMethod, buf, b)
}

type MintFn struct {
	To     types.Address `abi:"to"`
	Amount *big.Int      `abi:"amount"`
}

func (m *MintFn) Sig() []byte {
	return MintMethod.ID()
}

func (m *MintFn) EncodeAbi() ([]byte, error) {
	return MintMethod.Encode(m)
}

func (m *MintFn) DecodeAbi(buf []byte) error {
	return decodeMethod(MintMethod, buf, m)
}

var (
	TransferEventType = abi.MustNewEvent("event Transfer(address indexed from,address indexed to,uint256 value)")       //nolint:all
	ApprovalEventType = abi.MustNewEvent("event Approval(address indexed owner,address indexed spender,uint256 value)") //nolint:all

	valueDataType = abi.MustNewType("tuple(uint256 value)")
)

type TransferEvent struct {
	From  types.Address `abi:"from"`
	To    types.Address `abi:"to"`
	Value *big.Int      `abi:"value"`
}

func (t *TransferEvent) Sig() ethgo.Hash {
	return TransferEventType.ID()
}

func (t *TransferEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, TransferEventType,
		[]types.Hash{AddressTopic(t.From), AddressTopic(t.To)},
		valueDataType, []interface{}{t.Value})
}

func (t *TransferEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(TransferEventType, log, t)
}

type ApprovalEvent struct {
	Owner   types.Address `abi:"owner"`
	Spender types.Address `abi:"spender"`
	Value   *big.Int      `abi:"value"`
}

func (a *ApprovalEvent) Sig() ethgo.Hash {
	return ApprovalEventType.ID()
}

func (a *ApprovalEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, ApprovalEventType,
		[]types.Hash{AddressTopic(a.Owner), AddressTopic(a.Spender)},
		valueDataType, []interface{}{a.Value})
}

func (a *ApprovalEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(ApprovalEventType, log, a)
}
