package orders

import (
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

// Orders settles cross domain swaps. The origin side locks the inputs of an
// order and the destination side pays its outputs. Neither side knows about
// the other, a builder is trusted to include both in the same host block.
type Orders struct {
	logger  hclog.Logger
	Address types.Address
	Permit2 types.Address

	// origin deployments accept orders, every deployment fills them
	origin bool
}

// NewRollupOrders creates the rollup deployment, which both initiates and fills orders
func NewRollupOrders(logger hclog.Logger, addr, permit2Addr types.Address) *Orders {
	return &Orders{
		logger:  logger.Named("rollup-orders"),
		Address: addr,
		Permit2: permit2Addr,
		origin:  true,
	}
}

// NewHostOrders creates the host deployment, which only fills orders
func NewHostOrders(logger hclog.Logger, addr, permit2Addr types.Address) *Orders {
	return &Orders{
		logger:  logger.Named("host-orders"),
		Address: addr,
		Permit2: permit2Addr,
	}
}

func (o *Orders) Name() string {
	if o.origin {
		return "rollup-orders"
	}

	return "host-orders"
}

// Run implements the runtime.Runtime interface
func (o *Orders) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	input := c.Input

	switch {
	case o.origin && contractsapi.MatchSelector(contractsapi.InitiateMethod, input):
		var fn contractsapi.InitiateFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(o.initiate(host, c, &fn))
		})

	case contractsapi.MatchSelector(contractsapi.FillMethod, input):
		var fn contractsapi.FillFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(o.fill(host, c, fn.Outputs))
		})
	}

	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	switch {
	case o.origin && contractsapi.MatchSelector(contractsapi.InitiatePermit2Method, input):
		var fn contractsapi.InitiatePermit2Fn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(o.initiatePermit2(host, c, &fn))
		})

	case o.origin && contractsapi.MatchSelector(contractsapi.SweepMethod, input):
		var fn contractsapi.SweepFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(o.sweep(host, c, &fn))
		})

	case contractsapi.MatchSelector(contractsapi.FillPermit2Method, input):
		var fn contractsapi.FillPermit2Fn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(o.fillPermit2(host, c, &fn))
		})
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}

func result(err error) *runtime.ExecutionResult {
	if err != nil {
		return runtime.Failure(err)
	}

	return runtime.Success(nil)
}
