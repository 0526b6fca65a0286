package state

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	CallCreateDepth = 1024
)

// Executor is the registry of deployed native contracts of one domain
type Executor struct {
	logger   hclog.Logger
	runtimes map[types.Address]runtime.Runtime
}

// NewExecutor creates a new executor
func NewExecutor(logger hclog.Logger) *Executor {
	return &Executor{
		logger:   logger.Named("executor"),
		runtimes: map[types.Address]runtime.Runtime{},
	}
}

// Deploy registers a native contract at addr
func (e *Executor) Deploy(addr types.Address, rt runtime.Runtime) error {
	if existing, ok := e.runtimes[addr]; ok {
		return fmt.Errorf("address %s already hosts %s", addr, existing.Name())
	}

	e.runtimes[addr] = rt
	e.logger.Debug("contract deployed", "name", rt.Name(), "address", addr)

	return nil
}

// GetRuntime returns the contract deployed at addr
func (e *Executor) GetRuntime(addr types.Address) (runtime.Runtime, bool) {
	rt, ok := e.runtimes[addr]

	return rt, ok
}

// BeginTxn starts a transition on top of the given state for the block described by ctx
func (e *Executor) BeginTxn(s *State, ctx runtime.TxContext) *Transition {
	return NewTransition(e, s.Txn(), ctx)
}

// Call runs a read only call against a state. Every change is discarded.
func (e *Executor) Call(s *State, ctx runtime.TxContext, from, to types.Address, input []byte) ([]byte, error) {
	t := e.BeginTxn(s, ctx)
	t.ctx.Origin = from

	res := t.Callx(runtime.NewContractCall(0, from, from, to, nil, input), t)

	return res.ReturnValue, res.Err
}

// Transition applies transactions on a state txn
type Transition struct {
	logger   hclog.Logger
	executor *Executor
	txn      *Txn
	block    runtime.TxContext
	ctx      runtime.TxContext
}

func NewTransition(executor *Executor, txn *Txn, block runtime.TxContext) *Transition {
	return &Transition{
		logger:   executor.logger,
		executor: executor,
		txn:      txn,
		block:    block,
		ctx:      block,
	}
}

// Txn returns the underlying state txn
func (t *Transition) Txn() *Txn {
	return t.txn
}

// Apply executes a transaction. A failed transaction leaves no trace in the
// state: balances, storage and logs are reverted as a whole.
func (t *Transition) Apply(msg *types.Transaction) (*types.Receipt, error) {
	t.ctx = t.block
	t.ctx.Origin = msg.From
	t.ctx.BlobHashes = msg.BlobHashes

	value := new(uint256.Int)
	if msg.Value != nil {
		if msg.Value.Sign() < 0 || value.SetFromBig(msg.Value) {
			return nil, fmt.Errorf("invalid transaction value %s", msg.Value)
		}
	}

	res := t.Callx(runtime.NewContractCall(0, msg.From, msg.From, msg.To, value, msg.Input), t)

	// logs of a reverted call are already gone
	logs := t.txn.TakeLogs()
	t.txn.ClearTransient()

	receipt := &types.Receipt{
		TxHash: msg.Hash(),
		Status: types.ReceiptSuccess,
		Logs:   logs,
	}

	if res.Failed() {
		receipt.Status = types.ReceiptFailed
		receipt.RevertData = res.ReturnValue
		receipt.Error = res.Err.Error()

		t.logger.Debug("transaction reverted", "hash", receipt.TxHash, "err", res.Err)
	}

	return receipt, res.Err
}

// Commit returns the state with every applied transaction
func (t *Transition) Commit() *State {
	return t.txn.Commit()
}

// Callx implements the runtime.Host interface
func (t *Transition) Callx(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if c.Depth > CallCreateDepth {
		return runtime.Failure(runtime.ErrDepth)
	}

	snapshot := t.txn.Snapshot()

	if err := t.txn.Transfer(c.Caller, c.Address, c.Value); err != nil {
		t.revert(snapshot)

		return runtime.Failure(fmt.Errorf("%w: %w", runtime.ErrInsufficientBalance, err))
	}

	rt, ok := t.executor.runtimes[c.Address]
	if !ok {
		// plain accounts just receive value
		return runtime.Success(nil)
	}

	res := rt.Run(c, host)
	if res.Failed() {
		t.revert(snapshot)
	}

	return res
}

func (t *Transition) revert(snapshot int) {
	if err := t.txn.RevertToSnapshot(snapshot); err != nil {
		// snapshots are strictly nested, a missing one is a bug
		panic(err)
	}
}

func (t *Transition) IsContract(addr types.Address) bool {
	_, ok := t.executor.runtimes[addr]

	return ok
}

func (t *Transition) GetTxContext() runtime.TxContext {
	return t.ctx
}

func (t *Transition) GetStorage(addr types.Address, key types.Hash) types.Hash {
	return t.txn.GetState(addr, key)
}

func (t *Transition) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	t.txn.SetState(addr, key, value)
}

func (t *Transition) GetTransientStorage(addr types.Address, key types.Hash) types.Hash {
	return t.txn.GetTransientState(addr, key)
}

func (t *Transition) SetTransientStorage(addr types.Address, key types.Hash, value types.Hash) {
	t.txn.SetTransientState(addr, key, value)
}

func (t *Transition) GetBalance(addr types.Address) *uint256.Int {
	return t.txn.GetBalance(addr)
}

func (t *Transition) Transfer(from, to types.Address, amount *uint256.Int) error {
	if err := t.txn.Transfer(from, to, amount); err != nil {
		return fmt.Errorf("%w: %w", runtime.ErrInsufficientBalance, err)
	}

	return nil
}

func (t *Transition) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	log := &types.Log{
		Address: addr,
		Topics:  make([]types.Hash, len(topics)),
		Data:    make([]byte, len(data)),
	}

	copy(log.Topics, topics)
	copy(log.Data, data)

	t.txn.AddLog(log)
}
