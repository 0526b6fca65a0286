package passage

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	rollupPassageAddr = types.StringToAddress("0x2001")
	rollupTkn         = types.StringToAddress("0x8001")
)

func newRollupFixture(t *testing.T) *fixture {
	t.Helper()

	key, user := tests.GenerateKeyAndAddr(t)

	d := tests.NewDomain(t, defaultChainID)
	d.Deploy(permit2Addr, permit2.NewPermit2(permit2Addr))
	d.Deploy(rollupPassageAddr, NewRollupPassage(hclog.NewNullLogger(), rollupPassageAddr, permit2Addr))

	tkn := token.NewToken("WETH", rollupTkn)
	d.Deploy(rollupTkn, tkn)
	d.Init(func(host runtime.Host) {
		require.NoError(t, tkn.Mint(host, user, uint256.NewInt(1_000)))
	})

	for _, spender := range []types.Address{rollupPassageAddr, permit2Addr} {
		_, err := d.Apply(user, rollupTkn, nil, &contractsapi.ApproveFn{Spender: spender, Amount: big.NewInt(1_000)})
		require.NoError(t, err)
	}

	d.Fund(user, 1_000)

	return &fixture{d: d, key: key, user: user}
}

func (f *fixture) totalSupply(tkn types.Address) uint64 {
	var out struct {
		Supply *big.Int `abi:"supply"`
	}

	f.d.Call(tkn, contractsapi.TotalSupplyMethod, nil, &out)

	return out.Supply.Uint64()
}

func TestRollupPassage_Exit(t *testing.T) {
	t.Parallel()

	f := newRollupFixture(t)

	receipt, err := f.d.Apply(f.user, rollupPassageAddr, big.NewInt(100), &contractsapi.ExitFn{HostRecipient: recipient})
	require.NoError(t, err)

	var event contractsapi.ExitEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, recipient, event.HostRecipient)
	require.Equal(t, uint64(100), event.Amount.Uint64())

	// zero value exits are ignored
	receipt, err = f.d.Apply(f.user, rollupPassageAddr, nil, &contractsapi.ExitFn{HostRecipient: recipient})
	require.NoError(t, err)
	require.Empty(t, receipt.Logs)

	// plain transfers exit to the sender
	receipt, err = f.d.ApplyRaw(&types.Transaction{From: f.user, To: rollupPassageAddr, Value: big.NewInt(30)})
	require.NoError(t, err)

	tests.Event(t, receipt, &event)
	require.Equal(t, f.user, event.HostRecipient)
	require.Equal(t, uint64(30), event.Amount.Uint64())
}

func TestRollupPassage_ExitToken(t *testing.T) {
	t.Parallel()

	f := newRollupFixture(t)

	receipt, err := f.d.Apply(f.user, rollupPassageAddr, nil,
		&contractsapi.ExitTokenFn{HostRecipient: recipient, Token: rollupTkn, Amount: big.NewInt(400)})
	require.NoError(t, err)

	var event contractsapi.ExitTokenEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, recipient, event.HostRecipient)
	require.Equal(t, rollupTkn, event.Token)
	require.Equal(t, uint64(400), event.Amount.Uint64())

	// the tokens are burnt, not kept
	require.Zero(t, f.tokenBalance(rollupTkn, rollupPassageAddr))
	require.Equal(t, uint64(600), f.tokenBalance(rollupTkn, f.user))
	require.Equal(t, uint64(600), f.totalSupply(rollupTkn))

	_, err = f.d.Apply(f.user, rollupPassageAddr, nil,
		&contractsapi.ExitTokenFn{HostRecipient: recipient, Token: rollupTkn, Amount: big.NewInt(601)})
	tests.RequireRevert(t, err, contractsapi.ERC20InsufficientAllowanceError)
}

func TestRollupPassage_ExitTokenPermit2(t *testing.T) {
	t.Parallel()

	f := newRollupFixture(t)
	signer := permit2.NewSigner(f.key, defaultChainID, permit2Addr)

	permit := contractsapi.PermitTransferFrom{
		Permitted: contractsapi.TokenPermissions{Token: rollupTkn, Amount: big.NewInt(150)},
		Nonce:     big.NewInt(9),
		Deadline:  big.NewInt(5_000),
	}

	signed, err := signer.SignPermit(permit, rollupPassageAddr, permit2.ExitWitness(recipient))
	require.NoError(t, err)

	_, err = f.d.Apply(f.user, rollupPassageAddr, nil,
		&contractsapi.ExitTokenPermit2Fn{HostRecipient: f.user, Permit2: signed})
	tests.RequireRevert(t, err, contractsapi.InvalidSignerError)

	receipt, err := f.d.Apply(f.user, rollupPassageAddr, nil,
		&contractsapi.ExitTokenPermit2Fn{HostRecipient: recipient, Permit2: signed})
	require.NoError(t, err)

	var event contractsapi.ExitTokenEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, recipient, event.HostRecipient)
	require.Equal(t, uint64(150), event.Amount.Uint64())
	require.Equal(t, uint64(850), f.totalSupply(rollupTkn))
}
