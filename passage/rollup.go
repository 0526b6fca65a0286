package passage

import (
	"math/big"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

// RollupPassage is the rollup side of the bridge. Exits are only requests, the
// host releases funds once a builder filled them in the same host block.
type RollupPassage struct {
	logger  hclog.Logger
	Address types.Address
	Permit2 types.Address
}

// NewRollupPassage creates the rollup passage deployed at addr
func NewRollupPassage(logger hclog.Logger, addr, permit2Addr types.Address) *RollupPassage {
	return &RollupPassage{
		logger:  logger.Named("rollup-passage"),
		Address: addr,
		Permit2: permit2Addr,
	}
}

func (r *RollupPassage) Name() string {
	return "rollup-passage"
}

func (r *RollupPassage) exit(host runtime.Host, recipient types.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	return runtime.Emit(host, r.Address, &contractsapi.ExitEvent{
		HostRecipient: recipient,
		Amount:        amount.ToBig(),
	})
}

// exitToken burns tokens already held by the passage
func (r *RollupPassage) exitToken(
	host runtime.Host,
	c *runtime.Contract,
	recipient, tkn types.Address,
	amount *big.Int,
) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}

	if err := token.Burn(host, c, tkn, amount); err != nil {
		return err
	}

	r.logger.Debug("token exit", "token", tkn, "host recipient", recipient, "amount", amount)

	return runtime.Emit(host, r.Address, &contractsapi.ExitTokenEvent{
		HostRecipient: recipient,
		Token:         tkn,
		Amount:        amount,
	})
}

// Run implements the runtime.Runtime interface
func (r *RollupPassage) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	input := c.Input

	// plain value transfers exit to the sender
	if len(input) == 0 {
		return result(r.exit(host, c.Caller, c.Value))
	}

	if contractsapi.MatchSelector(contractsapi.ExitMethod, input) {
		var fn contractsapi.ExitFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return result(r.exit(host, fn.HostRecipient, c.Value))
	}

	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	switch {
	case contractsapi.MatchSelector(contractsapi.ExitTokenMethod, input):
		var fn contractsapi.ExitTokenFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			if err := token.TransferFrom(host, c, fn.Token, c.Caller, r.Address, fn.Amount); err != nil {
				return runtime.Failure(err)
			}

			return result(r.exitToken(host, c, fn.HostRecipient, fn.Token, fn.Amount))
		})

	case contractsapi.MatchSelector(contractsapi.ExitTokenPermit2Method, input):
		var fn contractsapi.ExitTokenPermit2Fn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			err := permit2.PermitWitnessTransferFrom(host, c, r.Permit2, fn.Permit2,
				permit2.TransferDetails(fn.Permit2.Permit, r.Address),
				permit2.ExitWitness(fn.HostRecipient))
			if err != nil {
				return runtime.Failure(err)
			}

			permitted := fn.Permit2.Permit.Permitted

			return result(r.exitToken(host, c, fn.HostRecipient, permitted.Token, permitted.Amount))
		})
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}
