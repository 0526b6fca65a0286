package verifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/types"
)

var ErrOutOfOrder = errors.New("host blocks must be verified in order")

const defaultWorkers = 4

// Verifier follows the host chain, derives the rollup blocks committed on it
// and records whether they hold
type Verifier struct {
	logger  hclog.Logger
	host    *genesis.Host
	rollups []*genesis.Rollup
	store   *Store
	workers int

	// lock serializes derivation, next is the host block to verify next
	lock sync.Mutex
	next uint64
}

// NewVerifier creates a verifier deriving rollups from host. Rollup chains
// must be at the same height, the next host block to verify is the one after it.
func NewVerifier(logger hclog.Logger, host *genesis.Host, rollups []*genesis.Rollup, store *Store, workers int) (*Verifier, error) {
	if len(rollups) == 0 {
		return nil, errors.New("no rollup chain to verify")
	}

	if workers <= 0 {
		workers = defaultWorkers
	}

	sorted := make([]*genesis.Rollup, len(rollups))
	copy(sorted, rollups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Chain.ChainID() < sorted[j].Chain.ChainID()
	})

	height := sorted[0].Chain.Header().Number
	for _, r := range sorted[1:] {
		if r.Chain.Header().Number != height {
			return nil, fmt.Errorf("rollup %d at height %d, expected %d",
				r.Chain.ChainID(), r.Chain.Header().Number, height)
		}
	}

	return &Verifier{
		logger:  logger.Named("verifier"),
		host:    host,
		rollups: sorted,
		store:   store,
		workers: workers,
		next:    height + 1,
	}, nil
}

// Next returns the number of the next host block to verify
func (v *Verifier) Next() uint64 {
	v.lock.Lock()
	defer v.lock.Unlock()

	return v.next
}

// VerifyBlock verifies host block n, which must be the next one
func (v *Verifier) VerifyBlock(n uint64) ([]*Verdict, error) {
	return v.VerifyRange(context.Background(), n, n)
}

// VerifyRange verifies host blocks from to to inclusive. Commitments are
// checked concurrently, rollup blocks are then derived in host order.
func (v *Verifier) VerifyRange(ctx context.Context, from, to uint64) ([]*Verdict, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if from != v.next || to < from {
		return nil, fmt.Errorf("%w: range %d-%d, next is %d", ErrOutOfOrder, from, to, v.next)
	}

	blocks := make([]*hostBlock, to-from+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	version := v.host.Zenith.Version
	hostChainID := v.host.Chain.ChainID()

	for i := range blocks {
		i := i

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			block, receipts, err := v.host.Chain.GetBlockByNumber(from + uint64(i))
			if err != nil {
				return err
			}

			hb, err := checkCommitments(version, hostChainID, block, receipts)
			if err != nil {
				return fmt.Errorf("host block %d: %w", block.Number(), err)
			}

			blocks[i] = hb

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var verdicts []*Verdict

	for _, hb := range blocks {
		if err := ctx.Err(); err != nil {
			return verdicts, err
		}

		blockVerdicts, err := v.deriveBlock(hb)
		if err != nil {
			return verdicts, err
		}

		verdicts = append(verdicts, blockVerdicts...)
	}

	return verdicts, nil
}

// deriveBlock derives the rollup blocks of every rollup chain for hb, the lock must be held
func (v *Verifier) deriveBlock(hb *hostBlock) ([]*Verdict, error) {
	hostPool, err := hostFills(hb.receipts)
	if err != nil {
		return nil, err
	}

	verdicts := make([]*Verdict, 0, len(v.rollups))

	for _, rollup := range v.rollups {
		verdict, err := v.deriveRollupBlock(rollup, hb, hostPool)
		if err != nil {
			return nil, fmt.Errorf("rollup %d at host block %d: %w", rollup.Chain.ChainID(), hb.block.Number(), err)
		}

		verdicts = append(verdicts, verdict)
		verdictMetrics(verdict)

		v.logger.Debug("rollup block derived",
			"chain", verdict.RollupChainID,
			"host block", verdict.HostBlock,
			"rollup block", verdict.RollupBlock,
			"valid", verdict.Valid(),
			"deposits", verdict.Deposits,
			"orders", len(verdict.Orders),
			"exits", len(verdict.Exits),
		)

		if verdict.Submission != nil && !verdict.Submission.Valid() {
			v.logger.Warn("invalid submission",
				"chain", verdict.RollupChainID,
				"host block", verdict.HostBlock,
				"tx", verdict.Submission.TxHash,
				"err", verdict.Submission.Err,
			)
		}
	}

	if err := v.store.PutVerdicts(verdicts); err != nil {
		return nil, err
	}

	v.next = hb.block.Number() + 1

	return verdicts, nil
}

// hostFills aggregates the fills made on the host orders contract
func hostFills(receipts []*types.Receipt) (fillPool, error) {
	pool := fillPool{}

	for _, receipt := range receipts {
		if receipt.Status != types.ReceiptSuccess {
			continue
		}

		for _, log := range receipt.Logs {
			if log.Address != genesis.HostOrdersAddr {
				continue
			}

			var filled contractsapi.FilledEvent
			if ok, err := filled.ParseLog(log); err != nil {
				return nil, err
			} else if ok {
				pool.add(filled.Outputs)
			}
		}
	}

	return pool, nil
}

// Sync verifies every host block up to the host head
func (v *Verifier) Sync(ctx context.Context) ([]*Verdict, error) {
	head := v.host.Chain.Header().Number

	next := v.Next()
	if next > head {
		return nil, nil
	}

	return v.VerifyRange(ctx, next, head)
}

// Run verifies host blocks as they are sealed until ctx is done
func (v *Verifier) Run(ctx context.Context) error {
	sub := v.host.Chain.SubscribeEvents()
	defer sub.Close()

	if _, err := v.Sync(ctx); err != nil {
		return err
	}

	ch := sub.GetEventCh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}

			if _, err := v.Sync(ctx); err != nil {
				return err
			}
		}
	}
}

func verdictMetrics(verdict *Verdict) {
	labels := []metrics.Label{{Name: "chain_id", Value: fmt.Sprint(verdict.RollupChainID)}}

	metrics.IncrCounterWithLabels([]string{"verifier", "blocks"}, 1, labels)
	metrics.IncrCounterWithLabels([]string{"verifier", "deposits"}, float32(verdict.Deposits), labels)
	metrics.IncrCounterWithLabels([]string{"verifier", "exits"}, float32(len(verdict.Exits)), labels)

	if !verdict.Valid() {
		metrics.IncrCounterWithLabels([]string{"verifier", "invalid"}, 1, labels)
	}
}
