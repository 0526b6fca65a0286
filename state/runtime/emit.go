package runtime

import (
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/types"
)

// Emit encodes event and appends it to the logs of the running transaction
func Emit(host Host, contract types.Address, event contractsapi.EventAbi) error {
	log, err := event.Encode(contract)
	if err != nil {
		return err
	}

	host.EmitLog(log.Address, log.Topics, log.Data)

	return nil
}

// Returns ABI encodes values as the outputs of method
func Returns(method *abi.Method, values ...interface{}) *ExecutionResult {
	ret, err := contractsapi.EncodeReturn(method, values...)
	if err != nil {
		return Failure(err)
	}

	return Success(ret)
}

// NotPayable reports a failure when value is sent to a non payable method
func NotPayable(c *Contract) *ExecutionResult {
	if c.Value != nil && !c.Value.IsZero() {
		return Failure(ErrNotPayable)
	}

	return nil
}
