package orders

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

// NativeValue sums the amounts of items paid in the native asset, the zero
// token. ok is false when the sum does not fit 256 bits.
func NativeValue[T any](items []T, native func(T) (types.Address, *big.Int)) (sum *uint256.Int, ok bool) {
	sum = new(uint256.Int)

	for _, item := range items {
		tkn, amount := native(item)
		if tkn != types.ZeroAddress {
			continue
		}

		if _, overflow := sum.AddOverflow(sum, runtime.ToUint256(amount)); overflow {
			return sum, false
		}
	}

	return sum, true
}

func inputToken(in contractsapi.Input) (types.Address, *big.Int)    { return in.Token, in.Amount }
func outputToken(out contractsapi.Output) (types.Address, *big.Int) { return out.Token, out.Amount }

// checkValue fails when attached does not cover required
func checkValue(attached, required *uint256.Int, ok bool) error {
	if !ok {
		return contractsapi.InsufficientValueError.Revert(attached.ToBig(), new(uint256.Int).SetAllOne().ToBig())
	}

	if attached.Lt(required) {
		return contractsapi.InsufficientValueError.Revert(attached.ToBig(), required.ToBig())
	}

	return nil
}

func (o *Orders) initiate(host runtime.Host, c *runtime.Contract, fn *contractsapi.InitiateFn) error {
	if new(big.Int).SetUint64(host.GetTxContext().Timestamp).Cmp(bigOrZero(fn.Deadline)) > 0 {
		return contractsapi.OrderExpiredError.Revert()
	}

	required, ok := NativeValue(fn.Inputs, inputToken)
	if err := checkValue(c.Value, required, ok); err != nil {
		return err
	}

	for _, in := range fn.Inputs {
		if in.Token == types.ZeroAddress {
			continue
		}

		if err := token.TransferFrom(host, c, in.Token, c.Caller, o.Address, in.Amount); err != nil {
			return err
		}
	}

	return o.emitOrder(host, fn.Deadline, fn.Inputs, fn.Outputs)
}

func (o *Orders) initiatePermit2(host runtime.Host, c *runtime.Contract, fn *contractsapi.InitiatePermit2Fn) error {
	permit := fn.Permit2.Permit

	err := permit2.PermitBatchWitnessTransferFrom(host, c, o.Permit2, fn.Permit2,
		permit2.BatchTransferDetails(permit, fn.TokenRecipient),
		permit2.OutputWitness(fn.Outputs))
	if err != nil {
		return err
	}

	inputs := make([]contractsapi.Input, len(permit.Permitted))
	for i, p := range permit.Permitted {
		inputs[i] = contractsapi.Input{Token: p.Token, Amount: bigOrZero(p.Amount)}
	}

	return o.emitOrder(host, permit.Deadline, inputs, fn.Outputs)
}

func (o *Orders) emitOrder(host runtime.Host, deadline *big.Int, inputs []contractsapi.Input, outputs []contractsapi.Output) error {
	ordersMetrics("initiated", len(outputs))

	o.logger.Debug("order", "deadline", deadline, "inputs", len(inputs), "outputs", len(outputs))

	return runtime.Emit(host, o.Address, &contractsapi.OrderEvent{
		Deadline: bigOrZero(deadline),
		Inputs:   inputs,
		Outputs:  outputs,
	})
}

// sweep hands inputs held by the contract to the builder of the current block
func (o *Orders) sweep(host runtime.Host, c *runtime.Contract, fn *contractsapi.SweepFn) error {
	if c.Caller != host.GetTxContext().Coinbase {
		return contractsapi.OnlyBuilderError.Revert()
	}

	if fn.Token == types.ZeroAddress {
		if _, err := runtime.Call(host, c, fn.Recipient, runtime.ToUint256(fn.Amount), nil); err != nil {
			return err
		}
	} else if err := token.Transfer(host, c, fn.Token, fn.Recipient, fn.Amount); err != nil {
		return err
	}

	o.logger.Debug("sweep", "recipient", fn.Recipient, "token", fn.Token, "amount", fn.Amount)

	return runtime.Emit(host, o.Address, &contractsapi.SweepEvent{
		Recipient: fn.Recipient,
		Token:     fn.Token,
		Amount:    bigOrZero(fn.Amount),
	})
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
