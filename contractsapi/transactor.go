package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	TransactMethod            = abi.MustNewMethod("function transact(uint256 rollupChainId,address to,bytes data,uint256 value,uint256 gas,uint256 maxFeePerGas)")                             //nolint:all
	TransactDefaultMethod     = abi.MustNewMethod("function transact(address to,bytes data,uint256 value,uint256 gas,uint256 maxFeePerGas)")                                                   //nolint:all
	EnterTransactMethod       = abi.MustNewMethod("function enterTransact(uint256 rollupChainId,address etherRecipient,address to,bytes data,uint256 value,uint256 gas,uint256 maxFeePerGas)") //nolint:all
	ConfigureGasMethod        = abi.MustNewMethod("function configureGas(uint256 perBlock,uint256 perTransact)")                                                                               //nolint:all
	TransactGasUsedMethod     = abi.MustNewMethod("function transactGasUsed(uint256 rollupChainId,uint256 blockNumber) returns (uint256 gasUsed)")                                             //nolint:all
	PerBlockGasLimitMethod    = abi.MustNewMethod("function perBlockGasLimit() returns (uint256 limit)")                                                                                       //nolint:all
	PerTransactGasLimitMethod = abi.MustNewMethod("function perTransactGasLimit() returns (uint256 limit)")                                                                                    //nolint:all
)

// TransactFn covers both transact overloads, a nil RollupChainID selects the default chain
type TransactFn struct {
	RollupChainID *big.Int      `abi:"rollupChainId"`
	To            types.Address `abi:"to"`
	Data          []byte        `abi:"data"`
	Value         *big.Int      `abi:"value"`
	Gas           *big.Int      `abi:"gas"`
	MaxFeePerGas  *big.Int      `abi:"maxFeePerGas"`
}

func (t *TransactFn) Sig() []byte {
	if t.RollupChainID == nil {
		return TransactDefaultMethod.ID()
	}

	return TransactMethod.ID()
}

func (t *TransactFn) EncodeAbi() ([]byte, error) {
	if t.RollupChainID == nil {
		return TransactDefaultMethod.Encode([]interface{}{t.To, t.Data, t.Value, t.Gas, t.MaxFeePerGas})
	}

	return TransactMethod.Encode(t)
}

func (t *TransactFn) DecodeAbi(buf []byte) error {
	if MatchSelector(TransactDefaultMethod, buf) {
		t.RollupChainID = nil

		return decodeMethod(TransactDefaultMethod, buf, t)
	}

	return decodeMethod(TransactMethod, buf, t)
}

type EnterTransactFn struct {
	RollupChainID  *big.Int      `abi:"rollupChainId"`
	EtherRecipient types.Address `abi:"etherRecipient"`
	To             types.Address `abi:"to"`
	Data           []byte        `abi:"data"`
	Value          *big.Int      `abi:"value"`
	Gas            *big.Int      `abi:"gas"`
	MaxFeePerGas   *big.Int      `abi:"maxFeePerGas"`
}

func (e *EnterTransactFn) Sig() []byte {
	return EnterTransactMethod.ID()
}

func (e *EnterTransactFn) EncodeAbi() ([]byte, error) {
	return EnterTransactMethod.Encode(e)
}

func (e *EnterTransactFn) DecodeAbi(buf []byte) error {
	return decodeMethod(EnterTransactMethod, buf, e)
}

type ConfigureGasFn struct {
	PerBlock    *big.Int `abi:"perBlock"`
	PerTransact *big.Int `abi:"perTransact"`
}

func (c *ConfigureGasFn) Sig() []byte {
	return ConfigureGasMethod.ID()
}

func (c *ConfigureGasFn) EncodeAbi() ([]byte, error) {
	return ConfigureGasMethod.Encode(c)
}

func (c *ConfigureGasFn) DecodeAbi(buf []byte) error {
	return decodeMethod(ConfigureGasMethod, buf, c)
}

type TransactGasUsedFn struct {
	RollupChainID *big.Int `abi:"rollupChainId"`
	BlockNumber   *big.Int `abi:"blockNumber"`
}

func (t *TransactGasUsedFn) Sig() []byte {
	return TransactGasUsedMethod.ID()
}

func (t *TransactGasUsedFn) EncodeAbi() ([]byte, error) {
	return TransactGasUsedMethod.Encode(t)
}

func (t *TransactGasUsedFn) DecodeAbi(buf []byte) error {
	return decodeMethod(TransactGasUsedMethod, buf, t)
}

var (
	TransactEventType      = abi.MustNewEvent("event Transact(uint256 indexed rollupChainId,address indexed sender,address indexed to,bytes data,uint256 value,uint256 gas,uint256 maxFeePerGas)") //nolint:all
	GasConfiguredEventType = abi.MustNewEvent("event GasConfigured(uint256 perBlock,uint256 perTransact)")                                                                                         //nolint:all

	transactDataType      = abi.MustNewType("tuple(bytes data,uint256 value,uint256 gas,uint256 maxFeePerGas)")
	gasConfiguredDataType = abi.MustNewType("tuple(uint256 perBlock,uint256 perTransact)")
)

// TransactEvent requests the rollup to execute a call with the host caller as sender
type TransactEvent struct {
	RollupChainID *big.Int      `abi:"rollupChainId"`
	Sender        types.Address `abi:"sender"`
	To            types.Address `abi:"to"`
	Data          []byte        `abi:"data"`
	Value         *big.Int      `abi:"value"`
	Gas           *big.Int      `abi:"gas"`
	MaxFeePerGas  *big.Int      `abi:"maxFeePerGas"`
}

func (t *TransactEvent) Sig() ethgo.Hash {
	return TransactEventType.ID()
}

func (t *TransactEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, TransactEventType,
		[]types.Hash{Uint256Topic(t.RollupChainID), AddressTopic(t.Sender), AddressTopic(t.To)},
		transactDataType, []interface{}{t.Data, t.Value, t.Gas, t.MaxFeePerGas})
}

func (t *TransactEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(TransactEventType, log, t)
}

type GasConfiguredEvent struct {
	PerBlock    *big.Int `abi:"perBlock"`
	PerTransact *big.Int `abi:"perTransact"`
}

func (g *GasConfiguredEvent) Sig() ethgo.Hash {
	return GasConfiguredEventType.ID()
}

func (g *GasConfiguredEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, GasConfiguredEventType, nil,
		gasConfiguredDataType, []interface{}{g.PerBlock, g.PerTransact})
}

func (g *GasConfiguredEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(GasConfiguredEventType, log, g)
}
