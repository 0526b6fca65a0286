package token

import (
	"fmt"
	"math/big"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

// The functions below are used by contracts calling into a token. Each one is
// a nested call, so a failing token aborts the caller with the token's error.

// TransferFrom moves amount of token from the owner to the recipient, spending
// the allowance given to the calling contract
func TransferFrom(host runtime.Host, c *runtime.Contract, token, from, to types.Address, amount *big.Int) error {
	return call(host, c, token, &contractsapi.TransferFromFn{From: from, To: to, Amount: amount})
}

// Transfer moves amount of token out of the calling contract
func Transfer(host runtime.Host, c *runtime.Contract, token, to types.Address, amount *big.Int) error {
	return call(host, c, token, &contractsapi.TransferFn{To: to, Amount: amount})
}

// Burn destroys amount of token held by the calling contract
func Burn(host runtime.Host, c *runtime.Contract, token types.Address, amount *big.Int) error {
	return call(host, c, token, &contractsapi.BurnFn{Amount: amount})
}

// Mint creates amount of token for to, the calling contract must be the minter
func Mint(host runtime.Host, c *runtime.Contract, token, to types.Address, amount *big.Int) error {
	return call(host, c, token, &contractsapi.MintFn{To: to, Amount: amount})
}

// BalanceOf queries the token balance of owner
func BalanceOf(host runtime.Host, c *runtime.Contract, token, owner types.Address) (*big.Int, error) {
	if !host.IsContract(token) {
		return nil, fmt.Errorf("%w: token %s", runtime.ErrNoCode, token)
	}

	input, err := (&contractsapi.BalanceOfFn{Account: owner}).EncodeAbi()
	if err != nil {
		return nil, err
	}

	ret, err := runtime.Call(host, c, token, nil, input)
	if err != nil {
		return nil, err
	}

	var out struct {
		Balance *big.Int `abi:"balance"`
	}

	if err := contractsapi.DecodeReturn(contractsapi.BalanceOfMethod, ret, &out); err != nil {
		return nil, err
	}

	return out.Balance, nil
}

func call(host runtime.Host, c *runtime.Contract, token types.Address, fn contractsapi.FunctionAbi) error {
	if !host.IsContract(token) {
		return fmt.Errorf("%w: token %s", runtime.ErrNoCode, token)
	}

	input, err := fn.EncodeAbi()
	if err != nil {
		return err
	}

	_, err = runtime.Call(host, c, token, nil, input)

	return err
}
