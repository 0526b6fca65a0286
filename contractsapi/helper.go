package contractsapi

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

// FunctionAbi is an abstraction for contract method inputs
type FunctionAbi interface {
	// Sig returns the 4 byte method selector
	Sig() []byte
	// EncodeAbi contains logic for encoding arbitrary data into ABI format
	EncodeAbi() ([]byte, error)
	// DecodeAbi contains logic for decoding given ABI data
	DecodeAbi(b []byte) error
}

// EventAbi is an interface representing an event emitted by a contract
type EventAbi interface {
	// Sig returns the event ABI signature or ID (which is unique for all event types)
	Sig() ethgo.Hash
	// Encode builds the log emitted by contract for this event
	Encode(contract types.Address) (*types.Log, error)
	// ParseLog parses the provided receipt log to given event type
	ParseLog(log *types.Log) (bool, error)
}

// MatchSelector reports whether calldata invokes the given method
func MatchSelector(method *abi.Method, input []byte) bool {
	return len(input) >= 4 && bytes.Equal(input[:4], method.ID())
}

// EncodeReturn ABI encodes the return values of method
func EncodeReturn(method *abi.Method, values ...interface{}) ([]byte, error) {
	return abi.Encode(values, method.Outputs)
}

// DecodeReturn decodes the return data of method into out
func DecodeReturn(method *abi.Method, data []byte, out interface{}) error {
	val, err := abi.Decode(method.Outputs, data)
	if err != nil {
		return err
	}

	return decodeImpl(val, out)
}

// AddressTopic encodes an indexed address argument
func AddressTopic(addr types.Address) types.Hash {
	return types.BytesToHash(addr.Bytes())
}

// Uint256Topic encodes an indexed uint256 argument
func Uint256Topic(v *big.Int) types.Hash {
	return types.BigToHash(v)
}

// BoolTopic encodes an indexed bool argument
func BoolTopic(v bool) types.Hash {
	if v {
		return types.BytesToHash([]byte{1})
	}

	return types.ZeroHash
}

// encodeLog assembles a log from the event id, the indexed topics and the
// non indexed arguments encoded with dataType
func encodeLog(
	contract types.Address,
	event *abi.Event,
	topics []types.Hash,
	dataType *abi.Type,
	data []interface{},
) (*types.Log, error) {
	log := &types.Log{
		Address: contract,
		Topics:  append([]types.Hash{types.Hash(event.ID())}, topics...),
	}

	if dataType != nil {
		buf, err := abi.Encode(data, dataType)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s event: %w", event.Name, err)
		}

		log.Data = buf
	}

	return log, nil
}

// parseLog decodes log into out if it was emitted for event
func parseLog(event *abi.Event, log *types.Log, out interface{}) (bool, error) {
	ethLog := toEthgoLog(log)
	if !event.Match(ethLog) {
		return false, nil
	}

	return true, decodeEvent(event, ethLog, out)
}
