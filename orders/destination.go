package orders

import (
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

// fill pays every output from the caller. Native outputs are paid from the
// attached value, any excess stays with the contract.
func (o *Orders) fill(host runtime.Host, c *runtime.Contract, outputs []contractsapi.Output) error {
	required, ok := NativeValue(outputs, outputToken)
	if err := checkValue(c.Value, required, ok); err != nil {
		return err
	}

	for _, out := range outputs {
		if out.Token == types.ZeroAddress {
			if _, err := runtime.Call(host, c, out.Recipient, runtime.ToUint256(out.Amount), nil); err != nil {
				return err
			}

			continue
		}

		if err := token.TransferFrom(host, c, out.Token, c.Caller, out.Recipient, out.Amount); err != nil {
			return err
		}
	}

	return o.emitFilled(host, outputs)
}

func (o *Orders) fillPermit2(host runtime.Host, c *runtime.Contract, fn *contractsapi.FillPermit2Fn) error {
	permitted := fn.Permit2.Permit.Permitted
	if len(permitted) != len(fn.Outputs) {
		return contractsapi.OutputMismatchError.Revert()
	}

	for i, out := range fn.Outputs {
		if permitted[i].Token != out.Token {
			return contractsapi.OutputMismatchError.Revert()
		}
	}

	err := permit2.PermitBatchWitnessTransferFrom(host, c, o.Permit2, fn.Permit2,
		permit2.OutputTransferDetails(fn.Outputs),
		permit2.OutputWitness(fn.Outputs))
	if err != nil {
		return err
	}

	return o.emitFilled(host, fn.Outputs)
}

func (o *Orders) emitFilled(host runtime.Host, outputs []contractsapi.Output) error {
	ordersMetrics("filled", len(outputs))

	o.logger.Debug("filled", "outputs", len(outputs))

	return runtime.Emit(host, o.Address, &contractsapi.FilledEvent{Outputs: outputs})
}
