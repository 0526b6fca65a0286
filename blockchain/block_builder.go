package blockchain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/helper/keccak"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

// BlockParams are the parameters of a block being built
type BlockParams struct {
	Coinbase  types.Address
	Timestamp uint64
}

// Bundle is a list of transactions included all together or not at all
type Bundle struct {
	ID  uuid.UUID
	Txs []*types.Transaction
}

// BundleError reports the transaction that caused a bundle to be dropped
type BundleError struct {
	ID    uuid.UUID
	Index int
	Err   error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("bundle %s dropped at tx %d: %v", e.ID, e.Index, e.Err)
}

func (e *BundleError) Unwrap() error {
	return e.Err
}

// BlockBuilder executes transactions on top of the chain head
type BlockBuilder struct {
	chain      *Blockchain
	parent     *types.Header
	ctx        runtime.TxContext
	transition *state.Transition

	txs      []*types.Transaction
	receipts []*types.Receipt
	sealed   bool
}

// NewBlockBuilder starts a block on top of the current head
func (b *Blockchain) NewBlockBuilder(params BlockParams) (*BlockBuilder, error) {
	b.lock.RLock()
	parent, st := b.head, b.state
	b.lock.RUnlock()

	if parent == nil {
		return nil, ErrNoGenesis
	}

	if params.Timestamp < parent.Timestamp {
		return nil, ErrTimestampTooOld
	}

	ctx := runtime.TxContext{
		Coinbase:  params.Coinbase,
		Number:    parent.Number + 1,
		Timestamp: params.Timestamp,
		ChainID:   b.chainID,
	}

	return &BlockBuilder{
		chain:      b,
		parent:     parent,
		ctx:        ctx,
		transition: b.executor.BeginTxn(st, ctx),
	}, nil
}

// Context returns the block context transactions run with
func (bb *BlockBuilder) Context() runtime.TxContext {
	return bb.ctx
}

// Transition exposes the pending ledger
func (bb *BlockBuilder) Transition() *state.Transition {
	return bb.transition
}

// AddTx executes tx. A reverted transaction is included with a failed receipt
// and its error is returned. Malformed transactions are not included.
func (bb *BlockBuilder) AddTx(tx *types.Transaction) (*types.Receipt, error) {
	if bb.sealed {
		return nil, ErrBlockSealed
	}

	receipt, err := bb.transition.Apply(tx)
	if receipt == nil {
		return nil, err
	}

	bb.txs = append(bb.txs, tx)
	bb.receipts = append(bb.receipts, receipt)

	return receipt, err
}

// AddBundle executes every transaction of bundle. When one of them fails the
// ledger is rolled back to where it was before the bundle and nothing is included.
func (bb *BlockBuilder) AddBundle(bundle *Bundle) ([]*types.Receipt, error) {
	if bb.sealed {
		return nil, ErrBlockSealed
	}

	txn := bb.transition.Txn()
	snapshot := txn.Snapshot()

	receipts := make([]*types.Receipt, 0, len(bundle.Txs))

	for i, tx := range bundle.Txs {
		receipt, err := bb.transition.Apply(tx)
		if err != nil {
			if revertErr := txn.RevertToSnapshot(snapshot); revertErr != nil {
				return nil, revertErr
			}

			bb.chain.logger.Debug("bundle dropped", "id", bundle.ID, "index", i, "err", err)

			return nil, &BundleError{ID: bundle.ID, Index: i, Err: err}
		}

		receipts = append(receipts, receipt)
	}

	bb.txs = append(bb.txs, bundle.Txs...)
	bb.receipts = append(bb.receipts, receipts...)

	return receipts, nil
}

// Seal persists the block and makes it the new head
func (bb *BlockBuilder) Seal() (*types.Block, []*types.Receipt, error) {
	if bb.sealed {
		return nil, nil, ErrBlockSealed
	}

	header := &types.Header{
		ParentHash:   bb.parent.Hash,
		Number:       bb.ctx.Number,
		Timestamp:    bb.ctx.Timestamp,
		Miner:        bb.ctx.Coinbase,
		TxRoot:       TxRoot(bb.txs),
		ReceiptsRoot: ReceiptsRoot(bb.receipts),
		ExtraData:    []byte{},
	}
	header.ComputeHash()

	body := &types.Body{Transactions: bb.txs}

	bb.chain.lock.Lock()
	err := bb.chain.writeBlock(header, body, bb.receipts, bb.transition.Commit())
	bb.chain.lock.Unlock()

	if err != nil {
		return nil, nil, err
	}

	bb.sealed = true

	return &types.Block{Header: header, Transactions: bb.txs}, bb.receipts, nil
}

// TxRoot is the keccak256 hash of the RLP list of transactions
func TxRoot(txs []*types.Transaction) types.Hash {
	return rlpListHash(len(txs), func(ar *fastrlp.Arena, i int) *fastrlp.Value {
		return txs[i].MarshalRLPWith(ar)
	})
}

// ReceiptsRoot is the keccak256 hash of the RLP list of receipts
func ReceiptsRoot(receipts []*types.Receipt) types.Hash {
	return rlpListHash(len(receipts), func(ar *fastrlp.Arena, i int) *fastrlp.Value {
		return receipts[i].MarshalRLPWith(ar)
	})
}

func rlpListHash(n int, item func(ar *fastrlp.Arena, i int) *fastrlp.Value) types.Hash {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()
	for i := 0; i < n; i++ {
		vv.Set(item(ar, i))
	}

	return types.BytesToHash(keccak.Keccak256Rlp(nil, vv))
}
