package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	EnterMethod                = abi.MustNewMethod("function enter(uint256 rollupChainId,address rollupRecipient)")                                          //nolint:all
	EnterDefaultMethod         = abi.MustNewMethod("function enter(address rollupRecipient)")                                                                //nolint:all
	EnterTokenMethod           = abi.MustNewMethod("function enterToken(uint256 rollupChainId,address rollupRecipient,address token,uint256 amount)")        //nolint:all
	EnterTokenDefaultMethod    = abi.MustNewMethod("function enterToken(address rollupRecipient,address token,uint256 amount)")                              //nolint:all
	EnterTokenPermit2Method    = abi.MustNewMethod("function enterTokenPermit2(uint256 rollupChainId,address rollupRecipient," + permit2Tuple + " permit2)") //nolint:all
	ConfigureEnterMethod       = abi.MustNewMethod("function configureEnter(address token,bool canEnter)")                                                   //nolint:all
	WithdrawMethod             = abi.MustNewMethod("function withdraw(address token,address recipient,uint256 amount)")                                      //nolint:all
	WithdrawNativeMethod       = abi.MustNewMethod("function withdrawNative(address recipient,uint256 amount)")                                              //nolint:all
	CanEnterMethod             = abi.MustNewMethod("function canEnter(address token) returns (bool allowed)")                                                //nolint:all
	DefaultRollupChainIDMethod = abi.MustNewMethod("function defaultRollupChainId() returns (uint256 rollupChainId)")                                        //nolint:all
	ExitMethod                 = abi.MustNewMethod("function exit(address hostRecipient)")                                                                   //nolint:all
	ExitTokenMethod            = abi.MustNewMethod("function exitToken(address hostRecipient,address token,uint256 amount)")                                 //nolint:all
	ExitTokenPermit2Method     = abi.MustNewMethod("function exitTokenPermit2(address hostRecipient," + permit2Tuple + " permit2)")                          //nolint:all
)

// EnterFn covers both enter overloads, a nil RollupChainID selects the default chain
type EnterFn struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	RollupRecipient types.Address `abi:"rollupRecipient"`
}

func (e *EnterFn) method() *abi.Method {
	if e.RollupChainID == nil {
		return EnterDefaultMethod
	}

	return EnterMethod
}

func (e *EnterFn) Sig() []byte {
	return e.method().ID()
}

func (e *EnterFn) EncodeAbi() ([]byte, error) {
	if e.RollupChainID == nil {
		return EnterDefaultMethod.Encode([]interface{}{e.RollupRecipient})
	}

	return EnterMethod.Encode(e)
}

func (e *EnterFn) DecodeAbi(buf []byte) error {
	if MatchSelector(EnterDefaultMethod, buf) {
		e.RollupChainID = nil

		return decodeMethod(EnterDefaultMethod, buf, e)
	}

	return decodeMethod(EnterMethod, buf, e)
}

// EnterTokenFn covers both enterToken overloads, a nil RollupChainID selects the default chain
type EnterTokenFn struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	RollupRecipient types.Address `abi:"rollupRecipient"`
	Token           types.Address `abi:"token"`
	Amount          *big.Int      `abi:"amount"`
}

func (e *EnterTokenFn) Sig() []byte {
	if e.RollupChainID == nil {
		return EnterTokenDefaultMethod.ID()
	}

	return EnterTokenMethod.ID()
}

func (e *EnterTokenFn) EncodeAbi() ([]byte, error) {
	if e.RollupChainID == nil {
		return EnterTokenDefaultMethod.Encode([]interface{}{e.RollupRecipient, e.Token, e.Amount})
	}

	return EnterTokenMethod.Encode(e)
}

func (e *EnterTokenFn) DecodeAbi(buf []byte) error {
	if MatchSelector(EnterTokenDefaultMethod, buf) {
		e.RollupChainID = nil

		return decodeMethod(EnterTokenDefaultMethod, buf, e)
	}

	return decodeMethod(EnterTokenMethod, buf, e)
}

type EnterTokenPermit2Fn struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	RollupRecipient types.Address `abi:"rollupRecipient"`
	Permit2         Permit2       `abi:"permit2"`
}

func (e *EnterTokenPermit2Fn) Sig() []byte {
	return EnterTokenPermit2Method.ID()
}

func (e *EnterTokenPermit2Fn) EncodeAbi() ([]byte, error) {
	return EnterTokenPermit2Method.Encode(e)
}

func (e *EnterTokenPermit2Fn) DecodeAbi(buf []byte) error {
	return decodeMethod(EnterTokenPermit2Method, buf, e)
}

type ConfigureEnterFn struct {
	Token    types.Address `abi:"token"`
	CanEnter bool          `abi:"canEnter"`
}

func (c *ConfigureEnterFn) Sig() []byte {
	return ConfigureEnterMethod.ID()
}

func (c *ConfigureEnterFn) EncodeAbi() ([]byte, error) {
	return ConfigureEnterMethod.Encode(c)
}

func (c *ConfigureEnterFn) DecodeAbi(buf []byte) error {
	return decodeMethod(ConfigureEnterMethod, buf, c)
}

// WithdrawFn withdraws a token, the zero token withdraws native value
type WithdrawFn struct {
	Token     types.Address `abi:"token"`
	Recipient types.Address `abi:"recipient"`
	Amount    *big.Int      `abi:"amount"`
}

func (w *WithdrawFn) Sig() []byte {
	if w.Token == types.ZeroAddress {
		return WithdrawNativeMethod.ID()
	}

	return WithdrawMethod.ID()
}

func (w *WithdrawFn) EncodeAbi() ([]byte, error) {
	if w.Token == types.ZeroAddress {
		return WithdrawNativeMethod.Encode([]interface{}{w.Recipient, w.Amount})
	}

	return WithdrawMethod.Encode(w)
}

func (w *WithdrawFn) DecodeAbi(buf []byte) error {
	if MatchSelector(WithdrawNativeMethod, buf) {
		w.Token = types.ZeroAddress

		return decodeMethod(WithdrawNativeMethod, buf, w)
	}

	return decodeMethod(WithdrawMethod, buf, w)
}

type CanEnterFn struct {
	Token types.Address `abi:"token"`
}

func (c *CanEnterFn) Sig() []byte {
	return CanEnterMethod.ID()
}

func (c *CanEnterFn) EncodeAbi() ([]byte, error) {
	return CanEnterMethod.Encode(c)
}

func (c *CanEnterFn) DecodeAbi(buf []byte) error {
	return decodeMethod(CanEnterMethod, buf, c)
}

type ExitFn struct {
	HostRecipient types.Address `abi:"hostRecipient"`
}

func (e *ExitFn) Sig() []byte {
	return ExitMethod.ID()
}

func (e *ExitFn) EncodeAbi() ([]byte, error) {
	return ExitMethod.Encode(e)
}

func (e *ExitFn) DecodeAbi(buf []byte) error {
	return decodeMethod(ExitMethod, buf, e)
}

type ExitTokenFn struct {
	HostRecipient types.Address `abi:"hostRecipient"`
	Token         types.Address `abi:"token"`
	Amount        *big.Int      `abi:"amount"`
}

func (e *ExitTokenFn) Sig() []byte {
	return ExitTokenMethod.ID()
}

func (e *ExitTokenFn) EncodeAbi() ([]byte, error) {
	return ExitTokenMethod.Encode(e)
}

func (e *ExitTokenFn) DecodeAbi(buf []byte) error {
	return decodeMethod(ExitTokenMethod, buf, e)
}

type ExitTokenPermit2Fn struct {
	HostRecipient types.Address `abi:"hostRecipient"`
	Permit2       Permit2       `abi:"permit2"`
}

func (e *ExitTokenPermit2Fn) Sig() []byte {
	return ExitTokenPermit2Method.ID()
}

func (e *ExitTokenPermit2Fn) EncodeAbi() ([]byte, error) {
	return ExitTokenPermit2Method.Encode(e)
}

func (e *ExitTokenPermit2Fn) DecodeAbi(buf []byte) error {
	return decodeMethod(ExitTokenPermit2Method, buf, e)
}

var (
	EnterEventType           = abi.MustNewEvent("event Enter(uint256 indexed rollupChainId,address indexed rollupRecipient,uint256 amount)")                            //nolint:all
	EnterTokenEventType      = abi.MustNewEvent("event EnterToken(uint256 indexed rollupChainId,address indexed rollupRecipient,address indexed token,uint256 amount)") //nolint:all
	ExitEventType            = abi.MustNewEvent("event Exit(address indexed hostRecipient,uint256 amount)")                                                             //nolint:all
	ExitTokenEventType       = abi.MustNewEvent("event ExitToken(address indexed hostRecipient,address indexed token,uint256 amount)")                                  //nolint:all
	WithdrawalEventType      = abi.MustNewEvent("event Withdrawal(address indexed token,address indexed recipient,uint256 amount)")                                     //nolint:all
	EnterConfiguredEventType = abi.MustNewEvent("event EnterConfigured(address indexed token,bool indexed canEnter)")                                                   //nolint:all

	amountDataType = abi.MustNewType("tuple(uint256 amount)")
)

type EnterEvent struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	RollupRecipient types.Address `abi:"rollupRecipient"`
	Amount          *big.Int      `abi:"amount"`
}

func (e *EnterEvent) Sig() ethgo.Hash {
	return EnterEventType.ID()
}

func (e *EnterEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, EnterEventType,
		[]types.Hash{Uint256Topic(e.RollupChainID), AddressTopic(e.RollupRecipient)},
		amountDataType, []interface{}{e.Amount})
}

func (e *EnterEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(EnterEventType, log, e)
}

type EnterTokenEvent struct {
	RollupChainID   *big.Int      `abi:"rollupChainId"`
	RollupRecipient types.Address `abi:"rollupRecipient"`
	Token           types.Address `abi:"token"`
	Amount          *big.Int      `abi:"amount"`
}

func (e *EnterTokenEvent) Sig() ethgo.Hash {
	return EnterTokenEventType.ID()
}

func (e *EnterTokenEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, EnterTokenEventType,
		[]types.Hash{Uint256Topic(e.RollupChainID), AddressTopic(e.RollupRecipient), AddressTopic(e.Token)},
		amountDataType, []interface{}{e.Amount})
}

func (e *EnterTokenEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(EnterTokenEventType, log, e)
}

type ExitEvent struct {
	HostRecipient types.Address `abi:"hostRecipient"`
	Amount        *big.Int      `abi:"amount"`
}

func (e *ExitEvent) Sig() ethgo.Hash {
	return ExitEventType.ID()
}

func (e *ExitEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, ExitEventType,
		[]types.Hash{AddressTopic(e.HostRecipient)},
		amountDataType, []interface{}{e.Amount})
}

func (e *ExitEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(ExitEventType, log, e)
}

type ExitTokenEvent struct {
	HostRecipient types.Address `abi:"hostRecipient"`
	Token         types.Address `abi:"token"`
	Amount        *big.Int      `abi:"amount"`
}

func (e *ExitTokenEvent) Sig() ethgo.Hash {
	return ExitTokenEventType.ID()
}

func (e *ExitTokenEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, ExitTokenEventType,
		[]types.Hash{AddressTopic(e.HostRecipient), AddressTopic(e.Token)},
		amountDataType, []interface{}{e.Amount})
}

func (e *ExitTokenEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(ExitTokenEventType, log, e)
}

type WithdrawalEvent struct {
	Token     types.Address `abi:"token"`
	Recipient types.Address `abi:"recipient"`
	Amount    *big.Int      `abi:"amount"`
}

func (w *WithdrawalEvent) Sig() ethgo.Hash {
	return WithdrawalEventType.ID()
}

func (w *WithdrawalEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, WithdrawalEventType,
		[]types.Hash{AddressTopic(w.Token), AddressTopic(w.Recipient)},
		amountDataType, []interface{}{w.Amount})
}

func (w *WithdrawalEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(WithdrawalEventType, log, w)
}

type EnterConfiguredEvent struct {
	Token    types.Address `abi:"token"`
	CanEnter bool          `abi:"canEnter"`
}

func (e *EnterConfiguredEvent) Sig() ethgo.Hash {
	return EnterConfiguredEventType.ID()
}

func (e *EnterConfiguredEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, EnterConfiguredEventType,
		[]types.Hash{AddressTopic(e.Token), BoolTopic(e.CanEnter)}, nil, nil)
}

func (e *EnterConfiguredEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(EnterConfiguredEventType, log, e)
}
