package tests

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

func GenerateKeyAndAddr(t *testing.T) (*ecdsa.PrivateKey, types.Address) {
	t.Helper()

	key, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	return key, crypto.PubKeyToAddress(&key.PublicKey)
}

// TestingT is the subset of testing.TB used by Domain, satisfied by rapid.T as well
type TestingT interface {
	require.TestingT
	Helper()
}

// Domain is a single ledger with native contracts, used to drive contracts
// transaction by transaction in tests
type Domain struct {
	t        TestingT
	Executor *state.Executor
	State    *state.State
	Ctx      runtime.TxContext
}

// NewDomain creates an empty domain at block 1
func NewDomain(t TestingT, chainID uint64) *Domain {
	t.Helper()

	return &Domain{
		t:        t,
		Executor: state.NewExecutor(hclog.NewNullLogger()),
		State:    state.NewState(),
		Ctx:      runtime.TxContext{ChainID: chainID, Number: 1, Timestamp: 1_000},
	}
}

// Deploy registers rt at addr
func (d *Domain) Deploy(addr types.Address, rt runtime.Runtime) {
	d.t.Helper()

	require.NoError(d.t, d.Executor.Deploy(addr, rt))
}

// Init runs fn against the ledger and commits its writes, used for genesis setup
func (d *Domain) Init(fn func(host runtime.Host)) {
	tr := d.Executor.BeginTxn(d.State, d.Ctx)
	fn(tr)
	d.State = tr.Commit()
}

// Fund credits amount of native value to addr
func (d *Domain) Fund(addr types.Address, amount uint64) {
	tr := d.Executor.BeginTxn(d.State, d.Ctx)
	require.NoError(d.t, tr.Txn().AddBalance(addr, uint256.NewInt(amount)))
	d.State = tr.Commit()
}

// NextBlock advances the block number and the timestamp
func (d *Domain) NextBlock(seconds uint64) {
	d.Ctx.Number++
	d.Ctx.Timestamp += seconds
}

// Apply sends fn to addr and commits the result, failed or not
func (d *Domain) Apply(from, to types.Address, value *big.Int, fn contractsapi.FunctionAbi) (*types.Receipt, error) {
	d.t.Helper()

	input, err := fn.EncodeAbi()
	require.NoError(d.t, err)

	return d.ApplyRaw(&types.Transaction{From: from, To: to, Value: value, Input: input})
}

// ApplyRaw executes tx and commits the result
func (d *Domain) ApplyRaw(tx *types.Transaction) (*types.Receipt, error) {
	tr := d.Executor.BeginTxn(d.State, d.Ctx)
	receipt, err := tr.Apply(tx)
	d.State = tr.Commit()

	return receipt, err
}

// Call runs a read only call of method and decodes its outputs into out
func (d *Domain) Call(to types.Address, method *abi.Method, fn contractsapi.FunctionAbi, out interface{}) {
	d.t.Helper()

	var (
		input = method.ID()
		err   error
	)

	if fn != nil {
		input, err = fn.EncodeAbi()
		require.NoError(d.t, err)
	}

	ret, err := d.Executor.Call(d.State, d.Ctx, types.ZeroAddress, to, input)
	require.NoError(d.t, err)
	require.NoError(d.t, contractsapi.DecodeReturn(method, ret, out))
}

// Balance returns the native balance of addr
func (d *Domain) Balance(addr types.Address) uint64 {
	return d.State.GetBalance(addr).Uint64()
}

// View reads contract state through the ledger
func (d *Domain) View(fn func(host runtime.Host)) {
	fn(d.Executor.BeginTxn(d.State, d.Ctx))
}

// Event finds the first log of receipt decoding into event
func Event(t *testing.T, receipt *types.Receipt, event contractsapi.EventAbi) {
	t.Helper()

	for _, log := range receipt.Logs {
		ok, err := event.ParseLog(log)
		require.NoError(t, err)

		if ok {
			return
		}
	}

	require.Failf(t, "event not found", "%x", event.Sig())
}

// CountEvents counts the logs of receipt matching event
func CountEvents(receipt *types.Receipt, event contractsapi.EventAbi) int {
	count := 0

	for _, log := range receipt.Logs {
		if len(log.Topics) > 0 && log.Topics[0] == types.Hash(event.Sig()) {
			count++
		}
	}

	return count
}

// RequireRevert asserts err is the custom error def raised with args, when given
func RequireRevert(t TestingT, err error, def *contractsapi.CustomError, args ...interface{}) {
	t.Helper()

	var revertErr *contractsapi.RevertError

	require.ErrorAs(t, err, &revertErr)
	require.Equal(t, def.Name(), revertErr.Definition().Name())

	if len(args) == 0 {
		return
	}

	require.Len(t, revertErr.Args(), len(args))

	for i, arg := range args {
		if expected, ok := arg.(*big.Int); ok {
			actual, ok := revertErr.Args()[i].(*big.Int)
			require.True(t, ok)
			require.Zero(t, expected.Cmp(actual), "expected %s, got %s", expected, actual)

			continue
		}

		require.Equal(t, arg, revertErr.Args()[i])
	}
}

// ReentrantToken answers every call by calling Target with Input, so a
// contract pulling it as a token is re-entered while still running
type ReentrantToken struct {
	Target types.Address
	Input  []byte
}

func (r *ReentrantToken) Name() string { return "reentrant-token" }

func (r *ReentrantToken) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	ret, err := runtime.Call(host, c, r.Target, nil, r.Input)
	if err != nil {
		return runtime.Failure(err)
	}

	return runtime.Success(ret)
}
