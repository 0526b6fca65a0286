package runtime

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/types"
)

// TxContext is the context of the transaction. It is handed to every call
// explicitly so that contract code never reads ambient block state.
type TxContext struct {
	Origin     types.Address
	Coinbase   types.Address
	Number     uint64
	Timestamp  uint64
	ChainID    uint64
	BlobHashes []types.Hash
}

// Host is the execution host
type Host interface {
	GetStorage(addr types.Address, key types.Hash) types.Hash
	SetStorage(addr types.Address, key types.Hash, value types.Hash)
	GetTransientStorage(addr types.Address, key types.Hash) types.Hash
	SetTransientStorage(addr types.Address, key types.Hash, value types.Hash)
	GetBalance(addr types.Address) *uint256.Int
	Transfer(from, to types.Address, amount *uint256.Int) error
	IsContract(addr types.Address) bool
	GetTxContext() TxContext
	EmitLog(addr types.Address, topics []types.Hash, data []byte)
	Callx(*Contract, Host) *ExecutionResult
}

// ExecutionResult includes all output after executing a native contract
// no matter the execution itself is successful or not.
type ExecutionResult struct {
	ReturnValue []byte // Returned data from the runtime
	Err         error  // Any error encountered during the execution, listed below
}

func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// Success wraps return data into a successful result
func Success(ret []byte) *ExecutionResult {
	return &ExecutionResult{ReturnValue: ret}
}

// Failure wraps an error into a failed result. Errors carrying revert data
// expose it as the return value.
func Failure(err error) *ExecutionResult {
	res := &ExecutionResult{Err: err}

	var revertErr RevertError
	if errors.As(err, &revertErr) {
		res.ReturnValue = revertErr.RevertData()
	}

	return res
}

// RevertError is a typed contract error with an ABI encoded revert payload
type RevertError interface {
	error
	RevertData() []byte
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
	ErrDepth               = errors.New("max call depth exceeded")
	ErrUnknownMethod       = errors.New("unknown method selector")
	ErrNotPayable          = errors.New("method is not payable")
	ErrInvalidInput        = errors.New("invalid call input")
	ErrNoCode              = errors.New("call to an address without code")
)

// Runtime is a deployed native contract
type Runtime interface {
	Run(c *Contract, host Host) *ExecutionResult
	Name() string
}

// Contract is the instance being called
type Contract struct {
	Address types.Address
	Origin  types.Address
	Caller  types.Address
	Depth   int
	Value   *uint256.Int
	Input   []byte
}

func NewContractCall(
	depth int,
	origin types.Address,
	from types.Address,
	to types.Address,
	value *uint256.Int,
	input []byte,
) *Contract {
	if value == nil {
		value = new(uint256.Int)
	}

	return &Contract{
		Caller:  from,
		Origin:  origin,
		Address: to,
		Value:   value,
		Depth:   depth,
		Input:   input,
	}
}

// Call performs a nested call from the running contract c
func Call(host Host, c *Contract, to types.Address, value *uint256.Int, input []byte) ([]byte, error) {
	res := host.Callx(NewContractCall(c.Depth+1, c.Origin, c.Address, to, value, input), host)
	if res.Failed() {
		return res.ReturnValue, res.Err
	}

	return res.ReturnValue, nil
}
