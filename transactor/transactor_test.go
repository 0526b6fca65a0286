package transactor

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/passage"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	hostChainID    = 1
	defaultChainID = 17
)

var (
	transactorAddr = types.StringToAddress("0x1003")
	passageAddr    = types.StringToAddress("0x1002")
	permit2Addr    = types.StringToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")
	gasAdmin       = types.StringToAddress("0xad")
	sender         = types.StringToAddress("0x5e")
	target         = types.StringToAddress("0x7a")
)

func newDomain(t tests.TestingT, gas GasConfig) (*tests.Domain, *Transactor) {
	t.Helper()

	d := tests.NewDomain(t, hostChainID)

	p := passage.NewPassage(hclog.NewNullLogger(), passageAddr, permit2Addr, 0)
	d.Deploy(passageAddr, p)

	tr := NewTransactor(hclog.NewNullLogger(), transactorAddr, passageAddr, 0)
	d.Deploy(transactorAddr, tr)

	d.Init(func(host runtime.Host) {
		require.NoError(t, p.Init(host, gasAdmin, defaultChainID, nil))
		tr.Init(host, gasAdmin, defaultChainID, gas)
	})

	d.Fund(sender, 1_000)

	return d, tr
}

func transactFn(chainID *big.Int, gas uint64) *contractsapi.TransactFn {
	return &contractsapi.TransactFn{
		RollupChainID: chainID,
		To:            target,
		Data:          []byte{0xde, 0xad},
		Value:         big.NewInt(5),
		Gas:           new(big.Int).SetUint64(gas),
		MaxFeePerGas:  big.NewInt(100),
	}
}

func TestTransactor_Transact(t *testing.T) {
	t.Parallel()

	d, tr := newDomain(t, GasConfig{PerBlock: 1_000, PerTransact: 400})

	receipt, err := d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 300))
	require.NoError(t, err)

	var event contractsapi.TransactEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(7), event.RollupChainID.Uint64())
	require.Equal(t, sender, event.Sender)
	require.Equal(t, target, event.To)
	require.Equal(t, []byte{0xde, 0xad}, event.Data)
	require.Equal(t, uint64(5), event.Value.Uint64())
	require.Equal(t, uint64(300), event.Gas.Uint64())
	require.Equal(t, uint64(100), event.MaxFeePerGas.Uint64())

	// no value attached, nothing enters
	require.Zero(t, tests.CountEvents(receipt, &contractsapi.EnterEvent{}))

	d.View(func(host runtime.Host) {
		require.Equal(t, uint64(300), tr.TransactGasUsed(host, uint256.NewInt(7), d.Ctx.Number).Uint64())
		require.True(t, tr.TransactGasUsed(host, uint256.NewInt(defaultChainID), d.Ctx.Number).IsZero())
	})

	var out struct {
		GasUsed *big.Int `abi:"gasUsed"`
	}

	d.Call(transactorAddr, contractsapi.TransactGasUsedMethod, &contractsapi.TransactGasUsedFn{
		RollupChainID: big.NewInt(7), BlockNumber: new(big.Int).SetUint64(d.Ctx.Number),
	}, &out)
	require.Equal(t, uint64(300), out.GasUsed.Uint64())
}

func TestTransactor_DefaultChain(t *testing.T) {
	t.Parallel()

	d, _ := newDomain(t, GasConfig{PerBlock: 1_000, PerTransact: 400})

	receipt, err := d.Apply(sender, transactorAddr, nil, transactFn(nil, 100))
	require.NoError(t, err)

	var event contractsapi.TransactEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(defaultChainID), event.RollupChainID.Uint64())
}

func TestTransactor_EnterValue(t *testing.T) {
	t.Parallel()

	d, _ := newDomain(t, GasConfig{PerBlock: 1_000, PerTransact: 400})

	receipt, err := d.Apply(sender, transactorAddr, big.NewInt(250), transactFn(big.NewInt(7), 100))
	require.NoError(t, err)

	var enter contractsapi.EnterEvent
	tests.Event(t, receipt, &enter)
	require.Equal(t, uint64(7), enter.RollupChainID.Uint64())
	require.Equal(t, sender, enter.RollupRecipient)
	require.Equal(t, uint64(250), enter.Amount.Uint64())

	require.Equal(t, uint64(250), d.Balance(passageAddr))
	require.Zero(t, d.Balance(transactorAddr))

	// enterTransact credits an explicit recipient
	recipient := types.StringToAddress("0x2e")

	receipt, err = d.Apply(sender, transactorAddr, big.NewInt(10), &contractsapi.EnterTransactFn{
		RollupChainID:  big.NewInt(7),
		EtherRecipient: recipient,
		To:             target,
		Value:          big.NewInt(0),
		Gas:            big.NewInt(1),
		MaxFeePerGas:   big.NewInt(1),
	})
	require.NoError(t, err)

	tests.Event(t, receipt, &enter)
	require.Equal(t, recipient, enter.RollupRecipient)

	var transact contractsapi.TransactEvent
	tests.Event(t, receipt, &transact)
	require.Equal(t, sender, transact.Sender)
}

func TestTransactor_GasCeilings(t *testing.T) {
	t.Parallel()

	d, tr := newDomain(t, GasConfig{PerBlock: 1_000, PerTransact: 400})

	_, err := d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 401))
	tests.RequireRevert(t, err, contractsapi.PerTransactGasLimitError)

	for i := 0; i < 2; i++ {
		_, err = d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 400))
		require.NoError(t, err)
	}

	// a failing request charges nothing, and neither does a failing enter
	_, err = d.Apply(sender, transactorAddr, big.NewInt(100), transactFn(big.NewInt(7), 201))
	tests.RequireRevert(t, err, contractsapi.PerBlockTransactGasLimitError)
	require.Zero(t, d.Balance(passageAddr))

	_, err = d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 200))
	require.NoError(t, err)

	// the budget is per chain
	_, err = d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(8), 400))
	require.NoError(t, err)

	// and per host block
	d.NextBlock(12)

	_, err = d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 400))
	require.NoError(t, err)

	d.View(func(host runtime.Host) {
		require.Equal(t, uint64(1_000), tr.TransactGasUsed(host, uint256.NewInt(7), d.Ctx.Number-1).Uint64())
		require.Equal(t, uint64(400), tr.TransactGasUsed(host, uint256.NewInt(7), d.Ctx.Number).Uint64())
	})
}

func TestTransactor_ConfigureGas(t *testing.T) {
	t.Parallel()

	d, _ := newDomain(t, GasConfig{PerBlock: 1_000, PerTransact: 400})

	_, err := d.Apply(sender, transactorAddr, nil,
		&contractsapi.ConfigureGasFn{PerBlock: big.NewInt(5_000), PerTransact: big.NewInt(2_000)})
	tests.RequireRevert(t, err, contractsapi.OnlyGasAdminError)

	receipt, err := d.Apply(gasAdmin, transactorAddr, nil,
		&contractsapi.ConfigureGasFn{PerBlock: big.NewInt(5_000), PerTransact: big.NewInt(2_000)})
	require.NoError(t, err)

	var event contractsapi.GasConfiguredEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(5_000), event.PerBlock.Uint64())
	require.Equal(t, uint64(2_000), event.PerTransact.Uint64())

	var out struct {
		Limit *big.Int `abi:"limit"`
	}

	d.Call(transactorAddr, contractsapi.PerBlockGasLimitMethod, nil, &out)
	require.Equal(t, uint64(5_000), out.Limit.Uint64())

	d.Call(transactorAddr, contractsapi.PerTransactGasLimitMethod, nil, &out)
	require.Equal(t, uint64(2_000), out.Limit.Uint64())

	_, err = d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), 2_000))
	require.NoError(t, err)

	// funded so the call clears the value transfer and reaches the payable check
	d.Fund(gasAdmin, 1)

	_, err = d.Apply(gasAdmin, transactorAddr, big.NewInt(1),
		&contractsapi.ConfigureGasFn{PerBlock: big.NewInt(1), PerTransact: big.NewInt(1)})
	require.ErrorIs(t, err, runtime.ErrNotPayable)
	require.Equal(t, uint64(1), d.Balance(gasAdmin))
}
