package verifier

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/types"
)

func output(token types.Address, amount int64, chainID uint32) contractsapi.Output {
	return contractsapi.Output{Token: token, Amount: big.NewInt(amount), Recipient: user, ChainID: chainID}
}

func TestFillPool_Consume(t *testing.T) {
	t.Parallel()

	tkn := types.StringToAddress("0x7001")

	pool := fillPool{}
	pool.add([]contractsapi.Output{output(tkn, 10, 1), output(tkn, 5, 1), output(types.ZeroAddress, 3, 1)})

	// fills aggregate by chain, token and recipient
	assert.Equal(t, big.NewInt(15), pool[fillKey{chainID: 1, token: tkn, recipient: user}])

	// another chain is not covered and nothing is consumed
	missing := pool.consume([]contractsapi.Output{output(tkn, 10, 1), output(tkn, 1, 2)})
	require.Len(t, missing, 1)
	assert.Equal(t, uint32(2), missing[0].ChainID)
	assert.Equal(t, big.NewInt(15), pool[fillKey{chainID: 1, token: tkn, recipient: user}])

	// outputs of one order add up
	missing = pool.consume([]contractsapi.Output{output(tkn, 10, 1), output(tkn, 6, 1)})
	require.Len(t, missing, 2)

	require.Empty(t, pool.consume([]contractsapi.Output{output(tkn, 10, 1), output(types.ZeroAddress, 3, 1)}))
	assert.Equal(t, big.NewInt(5), pool[fillKey{chainID: 1, token: tkn, recipient: user}])

	require.Empty(t, pool.consume([]contractsapi.Output{output(tkn, 5, 1)}))
	require.Len(t, pool.consume([]contractsapi.Output{output(tkn, 1, 1)}), 1)
}

func TestConsumeOrder_Domains(t *testing.T) {
	t.Parallel()

	hostPool, rollupPool := fillPool{}, fillPool{}
	hostPool.add([]contractsapi.Output{output(types.ZeroAddress, 10, hostChainID)})
	rollupPool.add([]contractsapi.Output{output(types.ZeroAddress, 4, rollupChainID)})

	// outputs bound to another rollup are not checked here
	outputs := []contractsapi.Output{
		output(types.ZeroAddress, 10, hostChainID),
		output(types.ZeroAddress, 4, rollupChainID),
		output(types.ZeroAddress, 99, 99),
	}

	require.Empty(t, consumeOrder(outputs, hostChainID, rollupChainID, hostPool, rollupPool))
	assert.Zero(t, hostPool[keyOf(outputs[0])].Sign())
	assert.Zero(t, rollupPool[keyOf(outputs[1])].Sign())

	hostPool.add([]contractsapi.Output{output(types.ZeroAddress, 10, hostChainID)})

	// a rollup output left uncovered keeps the host pool untouched
	missing := consumeOrder(outputs[:2], hostChainID, rollupChainID, hostPool, rollupPool)
	require.Len(t, missing, 1)
	assert.Equal(t, uint32(rollupChainID), missing[0].ChainID)
	assert.Equal(t, big.NewInt(10), hostPool[keyOf(outputs[0])])
}
