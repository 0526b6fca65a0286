package transactor

import (
	"math/big"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/roles"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	transactGasUsedSlot      = types.BytesToHash([]byte{0})
	perBlockGasLimitSlot     = types.BytesToHash([]byte{1})
	perTransactGasLimitSlot  = types.BytesToHash([]byte{2})
	defaultRollupChainIDSlot = types.BytesToHash([]byte{3})
	rolesSlot                = types.BytesToHash([]byte{4})
)

// GasConfig holds the transact gas ceilings
type GasConfig struct {
	PerBlock    uint64
	PerTransact uint64
}

// Transactor lets host accounts request rollup calls sent in their name. The
// gas of the requests is bounded per call and per rollup chain and host block.
type Transactor struct {
	logger  hclog.Logger
	Address types.Address
	Passage types.Address

	roles *roles.Manager
}

// NewTransactor creates the transactor deployed at addr. Value attached to a
// transact enters the rollup through passage.
func NewTransactor(logger hclog.Logger, addr, passage types.Address, roleDelay uint64) *Transactor {
	return &Transactor{
		logger:  logger.Named("transactor"),
		Address: addr,
		Passage: passage,
		roles: roles.NewManager(rolesSlot, roleDelay).
			WithGate(roles.GasAdmin, contractsapi.OnlyGasAdminError),
	}
}

func (t *Transactor) Name() string {
	return "transactor"
}

// Init sets the gas admin, the default rollup chain and the gas ceilings
func (t *Transactor) Init(host runtime.Host, gasAdmin types.Address, defaultRollupChainID uint64, gas GasConfig) {
	t.roles.Grant(host, t.Address, roles.GasAdmin, gasAdmin)
	runtime.SetUint(host, t.Address, defaultRollupChainIDSlot, uint256.NewInt(defaultRollupChainID))
	runtime.SetUint(host, t.Address, perBlockGasLimitSlot, uint256.NewInt(gas.PerBlock))
	runtime.SetUint(host, t.Address, perTransactGasLimitSlot, uint256.NewInt(gas.PerTransact))
}

func gasUsedSlot(rollupChainID *uint256.Int, blockNumber uint64) types.Hash {
	return state.MappingSlot(state.Uint64Key(blockNumber),
		state.MappingSlot(rollupChainID.Bytes32(), transactGasUsedSlot))
}

// TransactGasUsed returns the gas requested for rollupChainID during host block blockNumber
func (t *Transactor) TransactGasUsed(host runtime.Host, rollupChainID *uint256.Int, blockNumber uint64) *uint256.Int {
	return runtime.GetUint(host, t.Address, gasUsedSlot(rollupChainID, blockNumber))
}

// PerBlockGasLimit returns the gas ceiling per rollup chain and host block
func (t *Transactor) PerBlockGasLimit(host runtime.Host) *uint256.Int {
	return runtime.GetUint(host, t.Address, perBlockGasLimitSlot)
}

// PerTransactGasLimit returns the gas ceiling of a single transact
func (t *Transactor) PerTransactGasLimit(host runtime.Host) *uint256.Int {
	return runtime.GetUint(host, t.Address, perTransactGasLimitSlot)
}

// DefaultRollupChainID returns the chain of the transact overload without a chain id
func (t *Transactor) DefaultRollupChainID(host runtime.Host) *uint256.Int {
	return runtime.GetUint(host, t.Address, defaultRollupChainIDSlot)
}

// useGas charges gas to the block budget of rollupChainID. Nothing is
// recorded unless both ceilings hold.
func (t *Transactor) useGas(host runtime.Host, rollupChainID *uint256.Int, gas *uint256.Int) error {
	if gas.Gt(t.PerTransactGasLimit(host)) {
		return contractsapi.PerTransactGasLimitError.Revert()
	}

	number := host.GetTxContext().Number

	used, overflow := new(uint256.Int).AddOverflow(t.TransactGasUsed(host, rollupChainID, number), gas)
	if overflow || used.Gt(t.PerBlockGasLimit(host)) {
		return contractsapi.PerBlockTransactGasLimitError.Revert()
	}

	runtime.SetUint(host, t.Address, gasUsedSlot(rollupChainID, number), used)

	return nil
}

func (t *Transactor) enterTransact(host runtime.Host, c *runtime.Contract, fn *contractsapi.EnterTransactFn) error {
	if !c.Value.IsZero() {
		input, err := (&contractsapi.EnterFn{
			RollupChainID:   fn.RollupChainID,
			RollupRecipient: fn.EtherRecipient,
		}).EncodeAbi()
		if err != nil {
			return err
		}

		if _, err := runtime.Call(host, c, t.Passage, c.Value, input); err != nil {
			return err
		}
	}

	chainID := runtime.ToUint256(fn.RollupChainID)
	gas := runtime.ToUint256(fn.Gas)

	if err := t.useGas(host, chainID, gas); err != nil {
		return err
	}

	metrics.IncrCounterWithLabels([]string{"transactor", "gas"}, float32(gas.Uint64()),
		[]metrics.Label{{Name: "chain_id", Value: chainID.Dec()}})

	t.logger.Debug("transact", "rollup chain", chainID.Dec(), "sender", c.Caller, "to", fn.To, "gas", gas.Dec())

	return runtime.Emit(host, t.Address, &contractsapi.TransactEvent{
		RollupChainID: fn.RollupChainID,
		Sender:        c.Caller,
		To:            fn.To,
		Data:          fn.Data,
		Value:         bigOrZero(fn.Value),
		Gas:           bigOrZero(fn.Gas),
		MaxFeePerGas:  bigOrZero(fn.MaxFeePerGas),
	})
}

func (t *Transactor) configureGas(host runtime.Host, fn *contractsapi.ConfigureGasFn) error {
	runtime.SetUint(host, t.Address, perBlockGasLimitSlot, runtime.ToUint256(fn.PerBlock))
	runtime.SetUint(host, t.Address, perTransactGasLimitSlot, runtime.ToUint256(fn.PerTransact))

	t.logger.Info("gas configured", "per block", fn.PerBlock, "per transact", fn.PerTransact)

	return runtime.Emit(host, t.Address, &contractsapi.GasConfiguredEvent{
		PerBlock:    bigOrZero(fn.PerBlock),
		PerTransact: bigOrZero(fn.PerTransact),
	})
}

// Run implements the runtime.Runtime interface
func (t *Transactor) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if res, ok := t.roles.Run(c, host); ok {
		return res
	}

	input := c.Input

	switch {
	case contractsapi.MatchSelector(contractsapi.TransactMethod, input),
		contractsapi.MatchSelector(contractsapi.TransactDefaultMethod, input):
		var fn contractsapi.TransactFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		chainID := fn.RollupChainID
		if chainID == nil {
			chainID = t.DefaultRollupChainID(host).ToBig()
		}

		return result(t.enterTransact(host, c, &contractsapi.EnterTransactFn{
			RollupChainID:  chainID,
			EtherRecipient: c.Caller,
			To:             fn.To,
			Data:           fn.Data,
			Value:          fn.Value,
			Gas:            fn.Gas,
			MaxFeePerGas:   fn.MaxFeePerGas,
		}))

	case contractsapi.MatchSelector(contractsapi.EnterTransactMethod, input):
		var fn contractsapi.EnterTransactFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return result(t.enterTransact(host, c, &fn))
	}

	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	switch {
	case contractsapi.MatchSelector(contractsapi.ConfigureGasMethod, input):
		var fn contractsapi.ConfigureGasFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := t.roles.OnlyHolder(host, c, roles.GasAdmin); err != nil {
			return runtime.Failure(err)
		}

		return result(t.configureGas(host, &fn))

	case contractsapi.MatchSelector(contractsapi.TransactGasUsedMethod, input):
		var fn contractsapi.TransactGasUsedFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if fn.BlockNumber == nil || !fn.BlockNumber.IsUint64() {
			return runtime.Returns(contractsapi.TransactGasUsedMethod, new(big.Int))
		}

		used := t.TransactGasUsed(host, runtime.ToUint256(fn.RollupChainID), fn.BlockNumber.Uint64())

		return runtime.Returns(contractsapi.TransactGasUsedMethod, used.ToBig())

	case contractsapi.MatchSelector(contractsapi.PerBlockGasLimitMethod, input):
		return runtime.Returns(contractsapi.PerBlockGasLimitMethod, t.PerBlockGasLimit(host).ToBig())

	case contractsapi.MatchSelector(contractsapi.PerTransactGasLimitMethod, input):
		return runtime.Returns(contractsapi.PerTransactGasLimitMethod, t.PerTransactGasLimit(host).ToBig())
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}

func result(err error) *runtime.ExecutionResult {
	if err != nil {
		return runtime.Failure(err)
	}

	return runtime.Success(nil)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
