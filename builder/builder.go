package builder

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"

	"github.com/0xPolygon/polygon-zenith/blockchain"
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const (
	DefaultAttempts      = 3
	DefaultConfirmWindow = 600
	DefaultBackoff       = 100 * time.Millisecond
)

// SequencerSigner attests block headers, the builder never holds the sequencer key itself
type SequencerSigner interface {
	Address() types.Address
	SignBlock(header *contractsapi.BlockHeader, blockData []byte) (*zenith.Signature, error)
}

var _ SequencerSigner = (*zenith.Signer)(nil)

// Config configures a builder for one rollup chain
type Config struct {
	RollupChainID uint64
	GasLimit      uint64

	// Address sends the submissions and is the coinbase of the host blocks built
	Address       types.Address
	RewardAddress types.Address

	// ConfirmWindow is added to the block timestamp to get the confirm-by deadline
	ConfirmWindow uint64

	Attempts uint64
	Backoff  time.Duration

	// Clock returns the timestamp of the next host block
	Clock func() uint64
}

// Request is a rollup block and the host transactions that must land with it
type Request struct {
	// Transactions form the rollup block
	Transactions []*types.Transaction
	// HostTransactions are included in the host block ahead of the bundle
	HostTransactions []*types.Transaction
	// Fills are bundled after the submission on the host
	Fills []*types.Transaction
}

// Result is a host block carrying a submitted rollup block
type Result struct {
	BundleID uuid.UUID
	Header   *contractsapi.BlockHeader
	Block    *types.Block
	Receipts []*types.Receipt
	Attempts int
}

// Builder assembles rollup blocks into host bundles and submits them
type Builder struct {
	logger hclog.Logger
	host   *genesis.Host
	signer SequencerSigner
	config Config

	lock     sync.Mutex
	sequence *big.Int
	nonce    uint64
}

// NewBuilder creates a builder submitting to host
func NewBuilder(logger hclog.Logger, host *genesis.Host, signer SequencerSigner, config Config) *Builder {
	if config.Attempts == 0 {
		config.Attempts = DefaultAttempts
	}

	if config.ConfirmWindow == 0 {
		config.ConfirmWindow = DefaultConfirmWindow
	}

	if config.Backoff <= 0 {
		config.Backoff = DefaultBackoff
	}

	if config.Clock == nil {
		config.Clock = func() uint64 { return uint64(time.Now().Unix()) }
	}

	return &Builder{
		logger: logger.Named("builder").With("rollup", config.RollupChainID),
		host:   host,
		signer: signer,
		config: config,
	}
}

// RollupChainID is the rollup the builder submits blocks of
func (b *Builder) RollupChainID() uint64 {
	return b.config.RollupChainID
}

// Sequencer is the address whose signature the submissions carry
func (b *Builder) Sequencer() types.Address {
	return b.signer.Address()
}

// Submit builds a host block with the bundle {submitBlock, fills...}. The
// header is rebuilt and signed again when the host rejects it as stale.
func (b *Builder) Submit(ctx context.Context, req *Request) (*Result, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	data := (&types.Body{Transactions: req.Transactions}).MarshalRLPTo(nil)
	if len(req.Transactions) == 0 {
		data = []byte{}
	}

	var (
		result   *Result
		attempts int
	)

	backoff := retry.WithMaxRetries(b.config.Attempts-1, retry.NewConstant(b.config.Backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		res, err := b.attempt(req, data)
		if err == nil {
			result = res

			return nil
		}

		submitMetrics("rejected")

		if retryable(err) {
			b.logger.Debug("submission retried", "attempt", attempts, "err", err)

			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("submission failed after %d attempts: %w", attempts, err)
	}

	result.Attempts = attempts

	submitMetrics("submitted")

	b.logger.Info("rollup block submitted",
		"bundle", result.BundleID,
		"host block", result.Block.Number(),
		"sequence", result.Header.Sequence,
		"txs", len(req.Transactions),
		"fills", len(req.Fills),
		"attempts", attempts,
	)

	return result, nil
}

func (b *Builder) attempt(req *Request, data []byte) (*Result, error) {
	bb, err := b.host.Chain.NewBlockBuilder(blockchain.BlockParams{
		Coinbase:  b.config.Address,
		Timestamp: b.config.Clock(),
	})
	if err != nil {
		return nil, err
	}

	for _, tx := range req.HostTransactions {
		if _, err := bb.AddTx(tx); err != nil {
			b.logger.Debug("host transaction failed", "hash", tx.Hash(), "err", err)
		}
	}

	header := b.header(bb, data)

	sig, err := b.signer.SignBlock(header, data)
	if err != nil {
		return nil, fmt.Errorf("sign block: %w", err)
	}

	input, err := (&contractsapi.SubmitBlockFn{
		Header:    *header,
		V:         sig.V,
		R:         sig.R,
		S:         sig.S,
		BlockData: data,
	}).EncodeAbi()
	if err != nil {
		return nil, err
	}

	bundle := &blockchain.Bundle{
		ID: uuid.New(),
		Txs: append([]*types.Transaction{{
			Nonce: b.nextNonce(),
			From:  b.config.Address,
			To:    genesis.ZenithAddr,
			Input: input,
		}}, req.Fills...),
	}

	if _, err := bb.AddBundle(bundle); err != nil {
		b.refresh(err)

		return nil, err
	}

	block, receipts, err := bb.Seal()
	if err != nil {
		return nil, err
	}

	if b.host.Zenith.Version == zenith.SequenceVersion {
		b.sequence = new(big.Int).Add(b.sequence, big.NewInt(1))
	}

	return &Result{
		BundleID: bundle.ID,
		Header:   header,
		Block:    block,
		Receipts: receipts,
	}, nil
}

// header builds the header of the rollup block for the host block being built
func (b *Builder) header(bb *blockchain.BlockBuilder, data []byte) *contractsapi.BlockHeader {
	ctx := bb.Context()

	if b.sequence == nil {
		b.sequence = b.host.Zenith.NextSequence(bb.Transition(), runtime.ToUint256(b.rollupChainID())).ToBig()
	}

	return &contractsapi.BlockHeader{
		RollupChainID:   b.rollupChainID(),
		Sequence:        new(big.Int).Set(b.sequence),
		HostBlockNumber: new(big.Int).SetUint64(ctx.Number),
		ConfirmBy:       new(big.Int).SetUint64(ctx.Timestamp + b.config.ConfirmWindow),
		GasLimit:        new(big.Int).SetUint64(b.config.GasLimit),
		RewardAddress:   b.config.RewardAddress,
		BlockDataHash:   crypto.Keccak256Hash(data),
	}
}

func (b *Builder) rollupChainID() *big.Int {
	return new(big.Int).SetUint64(b.config.RollupChainID)
}

// nextNonce keeps submissions of identical blocks distinct
func (b *Builder) nextNonce() uint64 {
	b.nonce++

	return b.nonce
}

// refresh adopts the sequence the host expects after a BadSequence rejection
func (b *Builder) refresh(err error) {
	var revertErr *contractsapi.RevertError
	if !errors.As(err, &revertErr) {
		return
	}

	if !errors.Is(revertErr, contractsapi.BadSequenceError.Revert()) {
		return
	}

	if args := revertErr.Args(); len(args) == 1 {
		if expected, ok := args[0].(*big.Int); ok {
			b.logger.Debug("sequence refreshed", "stale", b.sequence, "expected", expected)
			b.sequence = expected
		}
	}
}

var retryableErrors = []error{
	contractsapi.BadSequenceError.Revert(),
	contractsapi.IncorrectHostBlockError.Revert(),
	contractsapi.BlockExpiredError.Revert(),
}

// retryable reports whether a new header may succeed where err failed
func retryable(err error) bool {
	for _, target := range retryableErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func submitMetrics(outcome string) {
	metrics.IncrCounter([]string{"builder", outcome}, 1)
}
