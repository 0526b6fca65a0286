package passage

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

const (
	hostChainID    = 1
	defaultChainID = 17
)

var (
	passageAddr = types.StringToAddress("0x1002")
	permit2Addr = types.StringToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")
	allowedTkn  = types.StringToAddress("0x7001")
	blockedTkn  = types.StringToAddress("0x7002")
	tokenAdmin  = types.StringToAddress("0xad")
	recipient   = types.StringToAddress("0x2e")
)

type fixture struct {
	d       *tests.Domain
	key     *ecdsa.PrivateKey
	user    types.Address
	passage *Passage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	key, user := tests.GenerateKeyAndAddr(t)

	d := tests.NewDomain(t, hostChainID)
	d.Deploy(permit2Addr, permit2.NewPermit2(permit2Addr))

	p := NewPassage(hclog.NewNullLogger(), passageAddr, permit2Addr, 0)
	d.Deploy(passageAddr, p)
	d.Init(func(host runtime.Host) {
		require.NoError(t, p.Init(host, tokenAdmin, defaultChainID, []types.Address{allowedTkn}))
	})

	for _, addr := range []types.Address{allowedTkn, blockedTkn} {
		tkn := token.NewToken(addr.String(), addr)
		d.Deploy(addr, tkn)
		d.Init(func(host runtime.Host) {
			require.NoError(t, tkn.Mint(host, user, uint256.NewInt(1_000)))
		})

		for _, spender := range []types.Address{passageAddr, permit2Addr} {
			_, err := d.Apply(user, addr, nil, &contractsapi.ApproveFn{Spender: spender, Amount: big.NewInt(1_000)})
			require.NoError(t, err)
		}
	}

	d.Fund(user, 1_000)

	return &fixture{d: d, key: key, user: user, passage: p}
}

func (f *fixture) tokenBalance(tkn, owner types.Address) uint64 {
	var out struct {
		Balance *big.Int `abi:"balance"`
	}

	f.d.Call(tkn, contractsapi.BalanceOfMethod, &contractsapi.BalanceOfFn{Account: owner}, &out)

	return out.Balance.Uint64()
}

func TestPassage_Enter(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	receipt, err := f.d.Apply(f.user, passageAddr, big.NewInt(100),
		&contractsapi.EnterFn{RollupChainID: big.NewInt(7), RollupRecipient: recipient})
	require.NoError(t, err)

	var event contractsapi.EnterEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(7), event.RollupChainID.Uint64())
	require.Equal(t, recipient, event.RollupRecipient)
	require.Equal(t, uint64(100), event.Amount.Uint64())

	require.Equal(t, uint64(100), f.d.Balance(passageAddr))
	require.Equal(t, uint64(900), f.d.Balance(f.user))

	// the overload without a chain id enters the default chain
	receipt, err = f.d.Apply(f.user, passageAddr, big.NewInt(50), &contractsapi.EnterFn{RollupRecipient: recipient})
	require.NoError(t, err)

	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(defaultChainID), event.RollupChainID.Uint64())
	require.Equal(t, uint64(50), event.Amount.Uint64())
}

func TestPassage_EnterZeroValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	receipt, err := f.d.Apply(f.user, passageAddr, nil,
		&contractsapi.EnterFn{RollupChainID: big.NewInt(7), RollupRecipient: recipient})
	require.NoError(t, err)
	require.Empty(t, receipt.Logs)

	receipt, err = f.d.Apply(f.user, passageAddr, nil, &contractsapi.EnterTokenFn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Token: blockedTkn, Amount: big.NewInt(0),
	})
	require.NoError(t, err)
	require.Zero(t, tests.CountEvents(receipt, &contractsapi.EnterTokenEvent{}))
}

func TestPassage_Fallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	receipt, err := f.d.ApplyRaw(&types.Transaction{From: f.user, To: passageAddr, Value: big.NewInt(40)})
	require.NoError(t, err)

	var event contractsapi.EnterEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(defaultChainID), event.RollupChainID.Uint64())
	require.Equal(t, f.user, event.RollupRecipient)
	require.Equal(t, uint64(40), event.Amount.Uint64())
}

func TestPassage_EnterToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	receipt, err := f.d.Apply(f.user, passageAddr, nil, &contractsapi.EnterTokenFn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Token: allowedTkn, Amount: big.NewInt(300),
	})
	require.NoError(t, err)

	var event contractsapi.EnterTokenEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, uint64(7), event.RollupChainID.Uint64())
	require.Equal(t, recipient, event.RollupRecipient)
	require.Equal(t, allowedTkn, event.Token)
	require.Equal(t, uint64(300), event.Amount.Uint64())

	require.Equal(t, uint64(300), f.tokenBalance(allowedTkn, passageAddr))
	require.Equal(t, uint64(700), f.tokenBalance(allowedTkn, f.user))

	// value is not accepted alongside tokens
	_, err = f.d.Apply(f.user, passageAddr, big.NewInt(1), &contractsapi.EnterTokenFn{
		RollupRecipient: recipient, Token: allowedTkn, Amount: big.NewInt(1),
	})
	require.ErrorIs(t, err, runtime.ErrNotPayable)
}

func TestPassage_EnterTokenReentrancy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	evil := types.StringToAddress("0x7003")
	enter := &contractsapi.EnterTokenFn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Token: evil, Amount: big.NewInt(1),
	}

	input, err := enter.EncodeAbi()
	require.NoError(t, err)

	f.d.Deploy(evil, &tests.ReentrantToken{Target: passageAddr, Input: input})

	_, err = f.d.Apply(f.user, passageAddr, nil, enter)
	tests.RequireRevert(t, err, contractsapi.ReentrancyGuardReentrantCallError)

	// the guard is released, a regular token still enters
	_, err = f.d.Apply(f.user, passageAddr, nil, &contractsapi.EnterTokenFn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Token: allowedTkn, Amount: big.NewInt(1),
	})
	require.NoError(t, err)
}

func TestPassage_AllowListGating(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.d.Apply(f.user, passageAddr, nil, &contractsapi.EnterTokenFn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Token: blockedTkn, Amount: big.NewInt(300),
	})
	tests.RequireRevert(t, err, contractsapi.DisallowedEnterError, blockedTkn)

	require.Zero(t, f.tokenBalance(blockedTkn, passageAddr))
	require.Equal(t, uint64(1_000), f.tokenBalance(blockedTkn, f.user))
}

func TestPassage_EnterTokenPermit2(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	signer := permit2.NewSigner(f.key, hostChainID, permit2Addr)

	permit := contractsapi.PermitTransferFrom{
		Permitted: contractsapi.TokenPermissions{Token: allowedTkn, Amount: big.NewInt(250)},
		Nonce:     big.NewInt(1),
		Deadline:  big.NewInt(5_000),
	}

	signed, err := signer.SignPermit(permit, passageAddr, permit2.EnterWitness(big.NewInt(7), recipient))
	require.NoError(t, err)

	// the witness binds the destination, a different recipient breaks the signature
	_, err = f.d.Apply(types.StringToAddress("0xbad"), passageAddr, nil, &contractsapi.EnterTokenPermit2Fn{
		RollupChainID: big.NewInt(7), RollupRecipient: types.StringToAddress("0xbad"), Permit2: signed,
	})
	tests.RequireRevert(t, err, contractsapi.InvalidSignerError)

	receipt, err := f.d.Apply(types.StringToAddress("0xb0"), passageAddr, nil, &contractsapi.EnterTokenPermit2Fn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Permit2: signed,
	})
	require.NoError(t, err)

	var event contractsapi.EnterTokenEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, recipient, event.RollupRecipient)
	require.Equal(t, uint64(250), event.Amount.Uint64())
	require.Equal(t, uint64(250), f.tokenBalance(allowedTkn, passageAddr))

	// nonces are single use
	_, err = f.d.Apply(types.StringToAddress("0xb0"), passageAddr, nil, &contractsapi.EnterTokenPermit2Fn{
		RollupChainID: big.NewInt(7), RollupRecipient: recipient, Permit2: signed,
	})
	tests.RequireRevert(t, err, contractsapi.InvalidNonceError)
}

func TestPassage_ConfigureEnter(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.d.Apply(f.user, passageAddr, nil, &contractsapi.ConfigureEnterFn{Token: blockedTkn, CanEnter: true})
	tests.RequireRevert(t, err, contractsapi.OnlyTokenAdminError)

	receipt, err := f.d.Apply(tokenAdmin, passageAddr, nil, &contractsapi.ConfigureEnterFn{Token: blockedTkn, CanEnter: true})
	require.NoError(t, err)

	var event contractsapi.EnterConfiguredEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, blockedTkn, event.Token)
	require.True(t, event.CanEnter)

	// unchanged configuration emits nothing
	receipt, err = f.d.Apply(tokenAdmin, passageAddr, nil, &contractsapi.ConfigureEnterFn{Token: blockedTkn, CanEnter: true})
	require.NoError(t, err)
	require.Empty(t, receipt.Logs)

	var out struct {
		Allowed bool `abi:"allowed"`
	}

	f.d.Call(passageAddr, contractsapi.CanEnterMethod, &contractsapi.CanEnterFn{Token: blockedTkn}, &out)
	require.True(t, out.Allowed)

	_, err = f.d.Apply(tokenAdmin, passageAddr, nil, &contractsapi.ConfigureEnterFn{Token: allowedTkn, CanEnter: false})
	require.NoError(t, err)

	f.d.Call(passageAddr, contractsapi.CanEnterMethod, &contractsapi.CanEnterFn{Token: allowedTkn}, &out)
	require.False(t, out.Allowed)
}

func TestPassage_Withdraw(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.d.Apply(f.user, passageAddr, big.NewInt(100), &contractsapi.EnterFn{RollupRecipient: recipient})
	require.NoError(t, err)

	_, err = f.d.Apply(f.user, passageAddr, nil, &contractsapi.EnterTokenFn{
		RollupRecipient: recipient, Token: allowedTkn, Amount: big.NewInt(300),
	})
	require.NoError(t, err)

	_, err = f.d.Apply(f.user, passageAddr, nil,
		&contractsapi.WithdrawFn{Token: allowedTkn, Recipient: f.user, Amount: big.NewInt(300)})
	tests.RequireRevert(t, err, contractsapi.OnlyTokenAdminError)

	receipt, err := f.d.Apply(tokenAdmin, passageAddr, nil,
		&contractsapi.WithdrawFn{Token: allowedTkn, Recipient: recipient, Amount: big.NewInt(120)})
	require.NoError(t, err)

	var event contractsapi.WithdrawalEvent
	tests.Event(t, receipt, &event)
	require.Equal(t, allowedTkn, event.Token)
	require.Equal(t, recipient, event.Recipient)
	require.Equal(t, uint64(120), event.Amount.Uint64())

	assert.Equal(t, uint64(180), f.tokenBalance(allowedTkn, passageAddr))
	assert.Equal(t, uint64(120), f.tokenBalance(allowedTkn, recipient))

	receipt, err = f.d.Apply(tokenAdmin, passageAddr, nil,
		&contractsapi.WithdrawFn{Recipient: recipient, Amount: big.NewInt(60)})
	require.NoError(t, err)

	tests.Event(t, receipt, &event)
	require.Equal(t, types.ZeroAddress, event.Token)

	assert.Equal(t, uint64(40), f.d.Balance(passageAddr))
	assert.Equal(t, uint64(60), f.d.Balance(recipient))

	// more than the passage holds
	_, err = f.d.Apply(tokenAdmin, passageAddr, nil,
		&contractsapi.WithdrawFn{Recipient: recipient, Amount: big.NewInt(41)})
	require.ErrorIs(t, err, runtime.ErrInsufficientBalance)
}

func TestPassage_Views(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	var out struct {
		RollupChainID *big.Int `abi:"rollupChainId"`
	}

	f.d.Call(passageAddr, contractsapi.DefaultRollupChainIDMethod, nil, &out)
	require.Equal(t, uint64(defaultChainID), out.RollupChainID.Uint64())

	f.d.View(func(host runtime.Host) {
		require.True(t, f.passage.CanEnter(host, allowedTkn))
		require.False(t, f.passage.CanEnter(host, blockedTkn))
	})
}
