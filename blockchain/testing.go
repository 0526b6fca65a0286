package blockchain

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage/memory"
	"github.com/0xPolygon/polygon-zenith/state"
)

// NewTestBlockchain creates a domain over in memory storage with its genesis written
func NewTestBlockchain(t *testing.T, chainID uint64, executor *state.Executor, genesis *Genesis) *Blockchain {
	t.Helper()

	db, err := memory.NewMemoryStorage(hclog.NewNullLogger())
	require.NoError(t, err)

	if executor == nil {
		executor = state.NewExecutor(hclog.NewNullLogger())
	}

	if genesis == nil {
		genesis = &Genesis{}
	}

	b := NewBlockchain(hclog.NewNullLogger(), chainID, db, executor)
	require.NoError(t, b.WriteGenesis(genesis))

	return b
}
