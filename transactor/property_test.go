package transactor

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
)

// Calls just under the per call ceiling that add up to the per block ceiling
// all pass, the next call with any gas fails.
func TestProperty_GasCeiling(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(tt *rapid.T) {
		perTransact := rapid.Uint64Range(2, 1_000_000).Draw(tt, "perTransact")
		calls := rapid.IntRange(1, 8).Draw(tt, "calls")

		each := perTransact - 1
		perBlock := each * uint64(calls)

		d, _ := newDomain(tt, GasConfig{PerBlock: perBlock, PerTransact: perTransact})

		for i := 0; i < calls; i++ {
			_, err := d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), each))
			require.NoError(tt, err)
		}

		extra := rapid.Uint64Range(1, perTransact).Draw(tt, "extra")

		_, err := d.Apply(sender, transactorAddr, nil, transactFn(big.NewInt(7), extra))
		tests.RequireRevert(tt, err, contractsapi.PerBlockTransactGasLimitError)

		var out struct {
			GasUsed *big.Int `abi:"gasUsed"`
		}

		d.Call(transactorAddr, contractsapi.TransactGasUsedMethod, &contractsapi.TransactGasUsedFn{
			RollupChainID: big.NewInt(7), BlockNumber: new(big.Int).SetUint64(d.Ctx.Number),
		}, &out)
		require.Equal(tt, perBlock, out.GasUsed.Uint64())
	})
}
