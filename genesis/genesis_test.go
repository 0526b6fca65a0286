package genesis

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage/memory"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/transactor"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

var (
	admin     = types.StringToAddress("0xad")
	sequencer = types.StringToAddress("0x5e")
	user      = types.StringToAddress("0x0a")
)

func testParams() *Params {
	return &Params{
		HostChainID:    1,
		RollupChainID:  17,
		Version:        zenith.SequenceVersion,
		Timestamp:      1_000,
		SequencerAdmin: admin,
		TokenAdmin:     admin,
		GasAdmin:       admin,
		Sequencers:     []types.Address{sequencer},
		Gas:            transactor.GasConfig{PerBlock: 100, PerTransact: 10},
		Alloc:          map[types.Address]uint64{user: 500},
	}
}

func TestNewHost(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	h, err := NewHost(hclog.NewNullLogger(), db, testParams())
	require.NoError(t, err)

	require.Equal(t, uint64(1), h.Chain.ChainID())
	require.Equal(t, uint64(0), h.Chain.Header().Number)
	require.Equal(t, uint64(500), h.Chain.State().GetBalance(user).Uint64())
	require.Len(t, h.Tokens, len(DefaultTokens))

	h.Chain.View(func(host runtime.Host) {
		require.True(t, h.Zenith.IsSequencer(host, sequencer))
		require.Equal(t, uint64(17), h.Passage.DefaultRollupChainID(host).Uint64())
		require.Equal(t, uint64(17), h.Transactor.DefaultRollupChainID(host).Uint64())
		require.Equal(t, uint64(100), h.Transactor.PerBlockGasLimit(host).Uint64())

		for _, pair := range DefaultTokens {
			// every host token may enter when no allow-list is given
			require.True(t, h.Passage.CanEnter(host, pair.Host))
			require.Equal(t, uint64(500), h.Tokens[pair.Host].BalanceOf(host, user).Uint64())
		}
	})

	_, ok := h.Chain.Executor().GetRuntime(Permit2Addr)
	require.True(t, ok)
}

func TestNewHost_AllowList(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	p := testParams()
	p.AllowedTokens = []types.Address{DefaultTokens[0].Host}

	h, err := NewHost(hclog.NewNullLogger(), db, p)
	require.NoError(t, err)

	h.Chain.View(func(host runtime.Host) {
		require.True(t, h.Passage.CanEnter(host, DefaultTokens[0].Host))
		require.False(t, h.Passage.CanEnter(host, DefaultTokens[1].Host))
	})
}

func TestNewRollup(t *testing.T) {
	t.Parallel()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	r, err := NewRollup(hclog.NewNullLogger(), 17, db, testParams())
	require.NoError(t, err)

	require.Equal(t, uint64(17), r.Chain.ChainID())

	for _, pair := range DefaultTokens {
		require.Equal(t, pair.Rollup, r.HostTokens[pair.Host])
		require.Contains(t, r.Tokens, pair.Rollup)
	}

	for _, addr := range []types.Address{RollupPassageAddr, RollupOrdersAddr, Permit2Addr} {
		_, ok := r.Chain.Executor().GetRuntime(addr)
		require.True(t, ok)
	}
}
