package contractsapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/umbracle/ethgo/abi"
)

// CustomError is a solidity custom error definition. The selector of an
// error is derived like the one of a method, so the method type is reused.
type CustomError struct {
	method *abi.Method
}

// NewCustomError parses an error signature such as "BadSequence(uint256 expected)"
func NewCustomError(sig string) *CustomError {
	return &CustomError{method: abi.MustNewMethod("function " + sig)}
}

func (e *CustomError) Name() string {
	return e.method.Name
}

func (e *CustomError) Selector() []byte {
	return e.method.ID()
}

// Encode returns the revert payload, selector followed by the abi encoded arguments
func (e *CustomError) Encode(args ...interface{}) ([]byte, error) {
	buf, err := abi.Encode(args, e.method.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.Name(), err)
	}

	return append(e.Selector(), buf...), nil
}

// Match reports whether revert data carries this error
func (e *CustomError) Match(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], e.Selector())
}

// Decode decodes revert data into out
func (e *CustomError) Decode(data []byte, out interface{}) error {
	return decodeMethod(e.method, data, out)
}

// Revert instantiates the error with the given arguments
func (e *CustomError) Revert(args ...interface{}) *RevertError {
	return &RevertError{def: e, args: args}
}

// RevertError is a raised custom error
type RevertError struct {
	def  *CustomError
	args []interface{}
}

func (r *RevertError) Error() string {
	if len(r.args) == 0 {
		return r.def.Name()
	}

	strs := make([]string, len(r.args))
	for i, arg := range r.args {
		strs[i] = fmt.Sprint(arg)
	}

	return fmt.Sprintf("%s(%s)", r.def.Name(), strings.Join(strs, ", "))
}

// RevertData returns the ABI encoded payload of the error
func (r *RevertError) RevertData() []byte {
	data, err := r.def.Encode(r.args...)
	if err != nil {
		return r.def.Selector()
	}

	return data
}

// Definition returns the custom error r is an instance of
func (r *RevertError) Definition() *CustomError {
	return r.def
}

// Args returns the arguments the error was raised with
func (r *RevertError) Args() []interface{} {
	return r.args
}

// Is matches errors of the same kind regardless of their arguments
func (r *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError) //nolint:errorlint
	if !ok {
		return false
	}

	return t.def == r.def
}

var (
	// sequencer block commitment
	BadSequenceError                = NewCustomError("BadSequence(uint256 expected)")
	BadSignatureError               = NewCustomError("BadSignature(address derivedSequencer)")
	BlockExpiredError               = NewCustomError("BlockExpired()")
	OneRollupBlockPerHostBlockError = NewCustomError("OneRollupBlockPerHostBlock()")
	IncorrectHostBlockError         = NewCustomError("IncorrectHostBlock()")
	BadBlobIndexError               = NewCustomError("BadBlobIndex(uint256 index)")
	OnlySequencerAdminError         = NewCustomError("OnlySequencerAdmin()")

	// passage
	DisallowedEnterError = NewCustomError("DisallowedEnter(address token)")
	OnlyTokenAdminError  = NewCustomError("OnlyTokenAdmin()")

	// transactor
	PerTransactGasLimitError      = NewCustomError("PerTransactGasLimit()")
	PerBlockTransactGasLimitError = NewCustomError("PerBlockTransactGasLimit()")
	OnlyGasAdminError             = NewCustomError("OnlyGasAdmin()")

	// orders
	OrderExpiredError      = NewCustomError("OrderExpired()")
	OnlyBuilderError       = NewCustomError("OnlyBuilder()")
	InsufficientValueError = NewCustomError("InsufficientValue(uint256 attached,uint256 required)")
	OutputMismatchError    = NewCustomError("OutputMismatch()")

	// role ownership
	OnlyRoleHolderError       = NewCustomError("OnlyRoleHolder(bytes32 role)")
	NotPendingHolderError     = NewCustomError("NotPendingHolder()")
	RoleTransferTooEarlyError = NewCustomError("RoleTransferTooEarly(uint256 earliestAcceptTime)")

	ReentrancyGuardReentrantCallError = NewCustomError("ReentrancyGuardReentrantCall()")

	// permit2
	SignatureExpiredError       = NewCustomError("SignatureExpired(uint256 signatureDeadline)")
	InvalidNonceError           = NewCustomError("InvalidNonce()")
	InvalidSignerError          = NewCustomError("InvalidSigner()")
	InvalidSignatureLengthError = NewCustomError("InvalidSignatureLength()")
	InvalidAmountError          = NewCustomError("InvalidAmount(uint256 maxAmount)")
	LengthMismatchError         = NewCustomError("LengthMismatch()")

	// token
	ERC20InsufficientBalanceError   = NewCustomError("ERC20InsufficientBalance(address sender,uint256 balance,uint256 needed)")
	ERC20InsufficientAllowanceError = NewCustomError("ERC20InsufficientAllowance(address spender,uint256 allowance,uint256 needed)")
	ERC20InvalidReceiverError       = NewCustomError("ERC20InvalidReceiver(address receiver)")
	OnlyMinterError                 = NewCustomError("OnlyMinter()")
)
