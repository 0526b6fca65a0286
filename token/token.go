package token

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	balancesSlot    = types.BytesToHash([]byte{0})
	allowancesSlot  = types.BytesToHash([]byte{1})
	totalSupplySlot = types.BytesToHash([]byte{2})
	minterSlot      = types.BytesToHash([]byte{3})
)

// Token is a burnable fungible token kept in the domain ledger
type Token struct {
	Symbol  string
	Address types.Address
}

// NewToken creates a token deployed at addr
func NewToken(symbol string, addr types.Address) *Token {
	return &Token{Symbol: symbol, Address: addr}
}

func (t *Token) Name() string {
	return "token/" + t.Symbol
}

// Init sets the minter of the token
func (t *Token) Init(host runtime.Host, minter types.Address) {
	runtime.SetAddress(host, t.Address, minterSlot, minter)
}

func balanceSlot(owner types.Address) types.Hash {
	return state.MappingSlot(state.AddressKey(owner), balancesSlot)
}

func allowanceSlot(owner, spender types.Address) types.Hash {
	return state.MappingSlot(state.AddressKey(spender), state.MappingSlot(state.AddressKey(owner), allowancesSlot))
}

// BalanceOf returns the token balance of owner
func (t *Token) BalanceOf(host runtime.Host, owner types.Address) *uint256.Int {
	return runtime.GetUint(host, t.Address, balanceSlot(owner))
}

// Allowance returns how much spender may move on behalf of owner
func (t *Token) Allowance(host runtime.Host, owner, spender types.Address) *uint256.Int {
	return runtime.GetUint(host, t.Address, allowanceSlot(owner, spender))
}

// TotalSupply returns the amount of tokens in circulation
func (t *Token) TotalSupply(host runtime.Host) *uint256.Int {
	return runtime.GetUint(host, t.Address, totalSupplySlot)
}

// Mint creates amount tokens for to
func (t *Token) Mint(host runtime.Host, to types.Address, amount *uint256.Int) error {
	if to == types.ZeroAddress {
		return contractsapi.ERC20InvalidReceiverError.Revert(to)
	}

	supply, overflow := new(uint256.Int).AddOverflow(t.TotalSupply(host), amount)
	if overflow {
		return runtime.ErrInvalidInput
	}

	runtime.SetUint(host, t.Address, totalSupplySlot, supply)
	runtime.SetUint(host, t.Address, balanceSlot(to), new(uint256.Int).Add(t.BalanceOf(host, to), amount))

	return t.emitTransfer(host, types.ZeroAddress, to, amount)
}

func (t *Token) burn(host runtime.Host, from types.Address, amount *uint256.Int) error {
	balance := t.BalanceOf(host, from)
	if balance.Lt(amount) {
		return contractsapi.ERC20InsufficientBalanceError.Revert(from, balance.ToBig(), amount.ToBig())
	}

	runtime.SetUint(host, t.Address, balanceSlot(from), new(uint256.Int).Sub(balance, amount))
	runtime.SetUint(host, t.Address, totalSupplySlot, new(uint256.Int).Sub(t.TotalSupply(host), amount))

	return t.emitTransfer(host, from, types.ZeroAddress, amount)
}

func (t *Token) transfer(host runtime.Host, from, to types.Address, amount *uint256.Int) error {
	if to == types.ZeroAddress {
		return contractsapi.ERC20InvalidReceiverError.Revert(to)
	}

	balance := t.BalanceOf(host, from)
	if balance.Lt(amount) {
		return contractsapi.ERC20InsufficientBalanceError.Revert(from, balance.ToBig(), amount.ToBig())
	}

	runtime.SetUint(host, t.Address, balanceSlot(from), new(uint256.Int).Sub(balance, amount))
	runtime.SetUint(host, t.Address, balanceSlot(to), new(uint256.Int).Add(t.BalanceOf(host, to), amount))

	return t.emitTransfer(host, from, to, amount)
}

func (t *Token) spendAllowance(host runtime.Host, owner, spender types.Address, amount *uint256.Int) error {
	allowance := t.Allowance(host, owner, spender)
	if allowance.Eq(maxAllowance) {
		return nil
	}

	if allowance.Lt(amount) {
		return contractsapi.ERC20InsufficientAllowanceError.Revert(spender, allowance.ToBig(), amount.ToBig())
	}

	runtime.SetUint(host, t.Address, allowanceSlot(owner, spender), new(uint256.Int).Sub(allowance, amount))

	return nil
}

func (t *Token) approve(host runtime.Host, owner, spender types.Address, amount *uint256.Int) error {
	runtime.SetUint(host, t.Address, allowanceSlot(owner, spender), amount)

	return runtime.Emit(host, t.Address, &contractsapi.ApprovalEvent{
		Owner:   owner,
		Spender: spender,
		Value:   amount.ToBig(),
	})
}

func (t *Token) emitTransfer(host runtime.Host, from, to types.Address, amount *uint256.Int) error {
	return runtime.Emit(host, t.Address, &contractsapi.TransferEvent{
		From:  from,
		To:    to,
		Value: amount.ToBig(),
	})
}

// an infinite approval is never decreased
var maxAllowance = new(uint256.Int).SetAllOne()

// Run implements the runtime.Runtime interface
func (t *Token) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	input := c.Input

	switch {
	case contractsapi.MatchSelector(contractsapi.TransferMethod, input):
		var fn contractsapi.TransferFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := t.transfer(host, c.Caller, fn.To, runtime.ToUint256(fn.Amount)); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.TransferMethod, true)

	case contractsapi.MatchSelector(contractsapi.TransferFromMethod, input):
		var fn contractsapi.TransferFromFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		amount := runtime.ToUint256(fn.Amount)

		if err := t.spendAllowance(host, fn.From, c.Caller, amount); err != nil {
			return runtime.Failure(err)
		}

		if err := t.transfer(host, fn.From, fn.To, amount); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.TransferFromMethod, true)

	case contractsapi.MatchSelector(contractsapi.ApproveMethod, input):
		var fn contractsapi.ApproveFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := t.approve(host, c.Caller, fn.Spender, runtime.ToUint256(fn.Amount)); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.ApproveMethod, true)

	case contractsapi.MatchSelector(contractsapi.BalanceOfMethod, input):
		var fn contractsapi.BalanceOfFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.BalanceOfMethod, t.BalanceOf(host, fn.Account).ToBig())

	case contractsapi.MatchSelector(contractsapi.AllowanceMethod, input):
		var fn contractsapi.AllowanceFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.AllowanceMethod, t.Allowance(host, fn.Owner, fn.Spender).ToBig())

	case contractsapi.MatchSelector(contractsapi.TotalSupplyMethod, input):
		return runtime.Returns(contractsapi.TotalSupplyMethod, t.TotalSupply(host).ToBig())

	case contractsapi.MatchSelector(contractsapi.BurnMethod, input):
		var fn contractsapi.BurnFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := t.burn(host, c.Caller, runtime.ToUint256(fn.Amount)); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)

	case contractsapi.MatchSelector(contractsapi.MintMethod, input):
		var fn contractsapi.MintFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if runtime.GetAddress(host, t.Address, minterSlot) != c.Caller {
			return runtime.Failure(contractsapi.OnlyMinterError.Revert())
		}

		if err := t.Mint(host, fn.To, runtime.ToUint256(fn.Amount)); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}
