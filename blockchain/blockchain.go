package blockchain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	ErrNoGenesis       = errors.New("genesis not written")
	ErrGenesisExists   = errors.New("genesis already written")
	ErrParentNotHead   = errors.New("parent is not the chain head")
	ErrTimestampTooOld = errors.New("timestamp older than the parent")
	ErrBlockSealed     = errors.New("block already sealed")
)

// Blockchain is one simulated domain, the host chain or a rollup: its native
// contracts, the committed ledger and the persisted blocks.
type Blockchain struct {
	logger   hclog.Logger
	chainID  uint64
	executor *state.Executor
	db       storage.Storage

	lock  sync.RWMutex
	head  *types.Header
	state *state.State

	stream *eventStream
}

// NewBlockchain creates a domain with chain id chainID over db
func NewBlockchain(logger hclog.Logger, chainID uint64, db storage.Storage, executor *state.Executor) *Blockchain {
	return &Blockchain{
		logger:   logger.Named("blockchain").With("chain_id", chainID),
		chainID:  chainID,
		executor: executor,
		db:       db,
		state:    state.NewState(),
		stream:   newEventStream(),
	}
}

// Genesis describes block 0 of a domain
type Genesis struct {
	Timestamp uint64
	ExtraData []byte

	// Alloc initializes the contracts and balances of the domain
	Alloc func(transition *state.Transition) error
}

// WriteGenesis executes the genesis allocation and persists block 0
func (b *Blockchain) WriteGenesis(genesis *Genesis) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.head != nil {
		return ErrGenesisExists
	}

	ctx := runtime.TxContext{ChainID: b.chainID, Timestamp: genesis.Timestamp}

	transition := b.executor.BeginTxn(b.state, ctx)
	if genesis.Alloc != nil {
		if err := genesis.Alloc(transition); err != nil {
			return fmt.Errorf("genesis alloc: %w", err)
		}
	}

	// logs emitted by the allocation are dropped
	transition.Txn().TakeLogs()

	header := &types.Header{
		Timestamp:    genesis.Timestamp,
		TxRoot:       TxRoot(nil),
		ReceiptsRoot: ReceiptsRoot(nil),
		ExtraData:    genesis.ExtraData,
	}

	return b.writeBlock(header.ComputeHash(), &types.Body{}, nil, transition.Commit())
}

// ChainID returns the chain id of the domain
func (b *Blockchain) ChainID() uint64 {
	return b.chainID
}

// Executor returns the contract registry of the domain
func (b *Blockchain) Executor() *state.Executor {
	return b.executor
}

// Header returns the current head of the chain
func (b *Blockchain) Header() *types.Header {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.head
}

// State returns the ledger committed at the head
func (b *Blockchain) State() *state.State {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.state
}

// GetHeaderByNumber returns the canonical header at height n
func (b *Blockchain) GetHeaderByNumber(n uint64) (*types.Header, bool) {
	hash, ok := b.db.ReadCanonicalHash(n)
	if !ok {
		return nil, false
	}

	header, err := b.db.ReadHeader(hash)
	if err != nil {
		return nil, false
	}

	return header, true
}

// GetBlockByNumber returns the canonical block at height n with its receipts
func (b *Blockchain) GetBlockByNumber(n uint64) (*types.Block, []*types.Receipt, error) {
	header, ok := b.GetHeaderByNumber(n)
	if !ok {
		return nil, nil, fmt.Errorf("block %d: %w", n, storage.ErrNotFound)
	}

	body, err := b.db.ReadBody(header.Hash)
	if err != nil {
		return nil, nil, fmt.Errorf("body of block %d: %w", n, err)
	}

	receipts, err := b.db.ReadReceipts(header.Hash)
	if err != nil {
		return nil, nil, fmt.Errorf("receipts of block %d: %w", n, err)
	}

	return &types.Block{Header: header, Transactions: body.Transactions}, receipts, nil
}

// GetReceiptsByHash returns the receipts of the block with the given hash
func (b *Blockchain) GetReceiptsByHash(hash types.Hash) ([]*types.Receipt, error) {
	return b.db.ReadReceipts(hash)
}

// ReadTxLookup returns the hash of the block including the transaction
func (b *Blockchain) ReadTxLookup(txHash types.Hash) (types.Hash, bool) {
	return b.db.ReadTxLookup(txHash)
}

// Call runs a read only call against the head state in the context of the next block
func (b *Blockchain) Call(from, to types.Address, input []byte) ([]byte, error) {
	b.lock.RLock()
	head, st := b.head, b.state
	b.lock.RUnlock()

	if head == nil {
		return nil, ErrNoGenesis
	}

	ctx := runtime.TxContext{
		ChainID:   b.chainID,
		Number:    head.Number + 1,
		Timestamp: head.Timestamp,
	}

	return b.executor.Call(st, ctx, from, to, input)
}

// View runs fn against the head state, writes are discarded
func (b *Blockchain) View(fn func(host runtime.Host)) {
	b.lock.RLock()
	head, st := b.head, b.state
	b.lock.RUnlock()

	ctx := runtime.TxContext{ChainID: b.chainID}
	if head != nil {
		ctx.Number, ctx.Timestamp = head.Number, head.Timestamp
	}

	fn(b.executor.BeginTxn(st, ctx))
}

// SubscribeEvents returns a subscription to new heads
func (b *Blockchain) SubscribeEvents() Subscription {
	return b.stream.subscribe()
}

// Close closes the underlying storage
func (b *Blockchain) Close() error {
	return b.db.Close()
}

// writeBlock persists a block whose parent is the current head, the lock must be held
func (b *Blockchain) writeBlock(header *types.Header, body *types.Body, receipts []*types.Receipt, st *state.State) error {
	if b.head != nil {
		if header.ParentHash != b.head.Hash || header.Number != b.head.Number+1 {
			return ErrParentNotHead
		}
	}

	batch := storage.NewBatchWriter(b.db)

	batch.PutCanonicalHeader(header)
	batch.PutBody(header.Hash, body)

	if err := batch.PutReceipts(header.Hash, receipts); err != nil {
		return err
	}

	for _, tx := range body.Transactions {
		batch.PutTxLookup(tx.Hash(), header.Hash)
	}

	if err := batch.WriteBatch(); err != nil {
		return err
	}

	b.head = header
	b.state = st

	metrics.SetGaugeWithLabels([]string{"blockchain", "height"}, float32(header.Number),
		[]metrics.Label{{Name: "chain_id", Value: fmt.Sprint(b.chainID)}})

	b.logger.Debug("new head", "number", header.Number, "hash", header.Hash, "txs", len(body.Transactions))

	ev := &Event{}
	ev.AddNewHeader(header)
	b.stream.push(ev)

	return nil
}
