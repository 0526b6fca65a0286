package verifier

import (
	"context"
	"math/big"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage/memory"
	"github.com/0xPolygon/polygon-zenith/builder"
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/transactor"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const (
	hostChainID   = 1
	rollupChainID = 17
)

var (
	admin  = types.StringToAddress("0xad")
	user   = types.StringToAddress("0x0a")
	bob    = types.StringToAddress("0x0b")
	miner  = types.StringToAddress("0xb1")
	reward = types.StringToAddress("0xb2")
)

type testEnv struct {
	host     *genesis.Host
	rollup   *genesis.Rollup
	store    *Store
	verifier *Verifier
	builder  *builder.Builder
	nonce    uint64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, sequencer := tests.GenerateKeyAndAddr(t)

	params := &genesis.Params{
		HostChainID:    hostChainID,
		RollupChainID:  rollupChainID,
		Version:        zenith.SequenceVersion,
		Timestamp:      1_000,
		SequencerAdmin: admin,
		TokenAdmin:     admin,
		GasAdmin:       admin,
		Sequencers:     []types.Address{sequencer},
		Gas:            transactor.GasConfig{PerBlock: 1_000_000, PerTransact: 100_000},
		Alloc:          map[types.Address]uint64{user: 1_000, miner: 1_000},
	}

	hostDB, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	host, err := genesis.NewHost(hclog.NewNullLogger(), hostDB, params)
	require.NoError(t, err)

	rollupDB, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	rollup, err := genesis.NewRollup(hclog.NewNullLogger(), rollupChainID, rollupDB, params)
	require.NoError(t, err)

	store, err := NewStore(filepath.Join(t.TempDir(), "verdicts.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	v, err := NewVerifier(hclog.NewNullLogger(), host, []*genesis.Rollup{rollup}, store, 2)
	require.NoError(t, err)

	var now atomic.Uint64

	now.Store(1_000)

	b := builder.NewBuilder(hclog.NewNullLogger(), host, zenith.NewSigner(key, hostChainID, zenith.SequenceVersion), builder.Config{
		RollupChainID: rollupChainID,
		GasLimit:      30_000_000,
		Address:       miner,
		RewardAddress: reward,
		Clock:         func() uint64 { return now.Add(12) },
	})

	return &testEnv{host: host, rollup: rollup, store: store, verifier: v, builder: b}
}

func (e *testEnv) tx(t *testing.T, from, to types.Address, value int64, fn contractsapi.FunctionAbi) *types.Transaction {
	t.Helper()

	e.nonce++

	tx := &types.Transaction{Nonce: e.nonce, From: from, To: to, Value: big.NewInt(value)}

	if fn != nil {
		input, err := fn.EncodeAbi()
		require.NoError(t, err)

		tx.Input = input
	}

	return tx
}

func (e *testEnv) enter(t *testing.T, recipient types.Address, amount int64) *types.Transaction {
	t.Helper()

	return e.tx(t, user, genesis.PassageAddr, amount,
		&contractsapi.EnterFn{RollupChainID: big.NewInt(rollupChainID), RollupRecipient: recipient})
}

func (e *testEnv) fill(t *testing.T, recipient types.Address, amount int64) *types.Transaction {
	t.Helper()

	return e.tx(t, miner, genesis.HostOrdersAddr, amount, &contractsapi.FillFn{Outputs: []contractsapi.Output{
		{Amount: big.NewInt(amount), Recipient: recipient, ChainID: hostChainID},
	}})
}

func (e *testEnv) submit(t *testing.T, req *builder.Request) *builder.Result {
	t.Helper()

	res, err := e.builder.Submit(context.Background(), req)
	require.NoError(t, err)

	return res
}

func TestVerifier_DepositsAndTransactions(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	e.submit(t, &builder.Request{
		HostTransactions: []*types.Transaction{e.enter(t, user, 100)},
		Transactions:     []*types.Transaction{e.tx(t, user, bob, 10, nil)},
	})

	verdicts, err := e.verifier.VerifyBlock(1)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	verdict := verdicts[0]
	require.True(t, verdict.Valid())
	require.NotNil(t, verdict.Submission)

	assert.Equal(t, uint64(rollupChainID), verdict.RollupChainID)
	assert.Equal(t, uint64(1), verdict.RollupBlock)
	assert.Equal(t, 1, verdict.Deposits)
	assert.Equal(t, 1, verdict.Transactions)
	assert.Equal(t, verdict.Submission.Sequencer, verdict.Submission.Signer)
	assert.Equal(t, uint64(0), verdict.Submission.Sequence.Uint64())
	assert.Equal(t, types.ZeroHash, verdict.ExitRoot)

	st := e.rollup.Chain.State()
	assert.Equal(t, uint64(90), st.GetBalance(user).Uint64())
	assert.Equal(t, uint64(10), st.GetBalance(bob).Uint64())
	assert.Equal(t, reward, e.rollup.Chain.Header().Miner)

	stored, err := e.store.GetVerdict(rollupChainID, 1)
	require.NoError(t, err)
	assert.Equal(t, verdict.RollupBlockHash, stored.RollupBlockHash)
	assert.Equal(t, uint64(2), e.verifier.Next())
}

func TestVerifier_TokenDeposit(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	pair := genesis.DefaultTokens[0]

	approve := e.tx(t, user, pair.Host, 0, &contractsapi.ApproveFn{Spender: genesis.PassageAddr, Amount: big.NewInt(50)})
	enter := e.tx(t, user, genesis.PassageAddr, 0, &contractsapi.EnterTokenFn{
		RollupChainID:   big.NewInt(rollupChainID),
		RollupRecipient: bob,
		Token:           pair.Host,
		Amount:          big.NewInt(50),
	})

	e.submit(t, &builder.Request{HostTransactions: []*types.Transaction{approve, enter}})

	verdicts, err := e.verifier.VerifyBlock(1)
	require.NoError(t, err)
	assert.Equal(t, 1, verdicts[0].Deposits)

	tkn := e.rollup.Tokens[pair.Rollup]
	e.rollup.Chain.View(func(host runtime.Host) {
		assert.Equal(t, uint64(50), tkn.BalanceOf(host, bob).Uint64())
	})
}

func TestVerifier_Exits(t *testing.T) {
	t.Parallel()

	for _, filled := range []bool{true, false} {
		filled := filled

		t.Run(map[bool]string{true: "filled", false: "unfilled"}[filled], func(t *testing.T) {
			t.Parallel()

			e := newTestEnv(t)

			e.submit(t, &builder.Request{HostTransactions: []*types.Transaction{e.enter(t, user, 100)}})

			req := &builder.Request{
				Transactions: []*types.Transaction{e.tx(t, user, genesis.RollupPassageAddr, 30, nil)},
			}
			if filled {
				req.Fills = []*types.Transaction{e.fill(t, user, 30)}
			}

			e.submit(t, req)

			verdicts, err := e.verifier.VerifyRange(context.Background(), 1, 2)
			require.NoError(t, err)
			require.Len(t, verdicts, 2)

			verdict := verdicts[1]
			require.Len(t, verdict.Exits, 1)
			require.Len(t, verdict.Orders, 1)

			assert.Equal(t, KindExit, verdict.Orders[0].Kind)
			assert.Equal(t, &Exit{Recipient: user, Amount: big.NewInt(30)}, verdict.Exits[0])
			assert.Equal(t, filled, verdict.Valid())
			assert.NotEqual(t, types.ZeroHash, verdict.ExitRoot)

			if !filled {
				require.Len(t, verdict.Orders[0].Missing, 1)
				assert.Equal(t, uint32(hostChainID), verdict.Orders[0].Missing[0].ChainID)
			}

			proof, err := e.store.GenerateExitProof(rollupChainID, 2, 0)
			require.NoError(t, err)
			assert.Equal(t, verdict.ExitRoot, proof.Root)
			require.NoError(t, VerifyExitProof(proof))

			_, err = e.store.GenerateExitProof(rollupChainID, 2, 1)
			require.Error(t, err)
		})
	}
}

func TestVerifier_Orders(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	e.submit(t, &builder.Request{HostTransactions: []*types.Transaction{e.enter(t, user, 100)}})

	order := func() *types.Transaction {
		return e.tx(t, user, genesis.RollupOrdersAddr, 10, &contractsapi.InitiateFn{
			Deadline: big.NewInt(1_000_000),
			Inputs:   []contractsapi.Input{{Amount: big.NewInt(10)}},
			Outputs:  []contractsapi.Output{{Amount: big.NewInt(10), Recipient: user, ChainID: hostChainID}},
		})
	}

	// two identical orders and a single fill: only the first one is covered
	e.submit(t, &builder.Request{
		Transactions: []*types.Transaction{order(), order()},
		Fills:        []*types.Transaction{e.fill(t, user, 10)},
	})

	verdicts, err := e.verifier.VerifyRange(context.Background(), 1, 2)
	require.NoError(t, err)

	verdict := verdicts[1]
	require.Len(t, verdict.Orders, 2)
	assert.True(t, verdict.Orders[0].Valid())
	assert.False(t, verdict.Orders[1].Valid())
	assert.False(t, verdict.Valid())
	assert.Empty(t, verdict.Exits)
}

func TestVerifier_OutOfOrder(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	e.submit(t, &builder.Request{})
	e.submit(t, &builder.Request{})

	_, err := e.verifier.VerifyBlock(2)
	require.ErrorIs(t, err, ErrOutOfOrder)

	verdicts, err := e.verifier.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, verdicts, 2)

	_, err = e.verifier.VerifyBlock(1)
	require.ErrorIs(t, err, ErrOutOfOrder)

	stored, err := e.store.Verdicts(rollupChainID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, uint64(1), stored[0].HostBlock)
	assert.Equal(t, uint64(2), stored[1].HostBlock)
}

func TestVerifier_Run(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- e.verifier.Run(ctx)
	}()

	e.submit(t, &builder.Request{HostTransactions: []*types.Transaction{e.enter(t, bob, 5)}})

	require.Eventually(t, func() bool {
		_, err := e.store.GetVerdict(rollupChainID, 1)

		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, uint64(5), e.rollup.Chain.State().GetBalance(bob).Uint64())
}

func TestCheckCommitments_TamperedData(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	res := e.submit(t, &builder.Request{Transactions: []*types.Transaction{e.tx(t, user, bob, 1, nil)}})

	hb, err := checkCommitments(zenith.SequenceVersion, hostChainID, res.Block, res.Receipts)
	require.NoError(t, err)
	require.True(t, hb.submissions[rollupChainID].Valid())
	require.Len(t, hb.submissions[rollupChainID].txs, 1)

	// replace the BlockData event with other data
	tampered, err := (&contractsapi.BlockDataEvent{
		RollupChainID: big.NewInt(rollupChainID),
		BlockData:     []byte{0x1},
	}).Encode(genesis.ZenithAddr)
	require.NoError(t, err)

	receipt := *res.Receipts[0]
	receipt.Logs = []*types.Log{receipt.Logs[0], tampered}

	hb, err = checkCommitments(zenith.SequenceVersion, hostChainID, res.Block, []*types.Receipt{&receipt})
	require.NoError(t, err)

	sub := hb.submissions[rollupChainID]
	require.False(t, sub.Valid())
	assert.Equal(t, errSignerMismatch.Error(), sub.Err)
	assert.Empty(t, sub.txs)

	// without its side event the data is missing
	receipt.Logs = receipt.Logs[:1]

	hb, err = checkCommitments(zenith.SequenceVersion, hostChainID, res.Block, []*types.Receipt{&receipt})
	require.NoError(t, err)
	assert.Equal(t, errMissingData.Error(), hb.submissions[rollupChainID].Err)
}

func TestCheckCommitments_WideChainID(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	res := e.submit(t, &builder.Request{Transactions: []*types.Transaction{e.tx(t, user, bob, 1, nil)}})

	var event contractsapi.BlockSubmittedEvent

	receipt := *res.Receipts[0]
	ok, err := event.ParseLog(receipt.Logs[0])
	require.NoError(t, err)
	require.True(t, ok)

	event.RollupChainID = new(big.Int).Lsh(big.NewInt(1), 64)

	wide, err := event.Encode(genesis.ZenithAddr)
	require.NoError(t, err)

	receipt.Logs = append([]*types.Log{wide}, receipt.Logs[1:]...)

	hb, err := checkCommitments(zenith.SequenceVersion, hostChainID, res.Block, []*types.Receipt{&receipt})
	require.NoError(t, err)
	assert.Empty(t, hb.submissions)
}

func TestNewVerifier_Heights(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	_, err := NewVerifier(hclog.NewNullLogger(), e.host, nil, e.store, 1)
	require.Error(t, err)
}
