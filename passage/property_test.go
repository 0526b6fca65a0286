package passage

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

func TestProperty_AllowListGating(t *testing.T) {
	t.Parallel()

	user := types.StringToAddress("0xe0a")

	rapid.Check(t, func(tt *rapid.T) {
		allowed := rapid.Bool().Draw(tt, "allowed")
		amount := rapid.Uint64Range(1, 1_000).Draw(tt, "amount")

		var allowList []types.Address
		if allowed {
			allowList = append(allowList, blockedTkn)
		}

		d := tests.NewDomain(tt, hostChainID)

		p := NewPassage(hclog.NewNullLogger(), passageAddr, permit2Addr, 0)
		d.Deploy(passageAddr, p)
		d.Init(func(host runtime.Host) {
			require.NoError(tt, p.Init(host, tokenAdmin, defaultChainID, allowList))
		})

		tkn := token.NewToken("TKN", blockedTkn)
		d.Deploy(blockedTkn, tkn)
		d.Init(func(host runtime.Host) {
			require.NoError(tt, tkn.Mint(host, user, uint256.NewInt(1_000)))
		})

		_, err := d.Apply(user, blockedTkn, nil, &contractsapi.ApproveFn{Spender: passageAddr, Amount: big.NewInt(1_000)})
		require.NoError(tt, err)

		_, err = d.Apply(user, passageAddr, nil, &contractsapi.EnterTokenFn{
			RollupRecipient: user, Token: blockedTkn, Amount: new(big.Int).SetUint64(amount),
		})

		var held *uint256.Int

		d.View(func(host runtime.Host) {
			held = tkn.BalanceOf(host, passageAddr)
		})

		if allowed {
			require.NoError(tt, err)
			require.Equal(tt, amount, held.Uint64())

			return
		}

		tests.RequireRevert(tt, err, contractsapi.DisallowedEnterError, blockedTkn)
		require.True(tt, held.IsZero())
	})
}
