package contractsapi

import (
	"math/big"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	TransferRoleMethod      = abi.MustNewMethod("function transferRole(bytes32 role,address newHolder)")                                         //nolint:all
	AcceptRoleMethod        = abi.MustNewMethod("function acceptRole(bytes32 role)")                                                             //nolint:all
	RoleHolderMethod        = abi.MustNewMethod("function roleHolder(bytes32 role) returns (address holder)")                                    //nolint:all
	PendingRoleHolderMethod = abi.MustNewMethod("function pendingRoleHolder(bytes32 role) returns (address pending,uint256 earliestAcceptTime)") //nolint:all
)

type TransferRoleFn struct {
	Role      types.Hash    `abi:"role"`
	NewHolder types.Address `abi:"newHolder"`
}

func (t *TransferRoleFn) Sig() []byte {
	return TransferRoleMethod.ID()
}

func (t *TransferRoleFn) EncodeAbi() ([]byte, error) {
	return TransferRoleMethod.Encode(t)
}

func (t *TransferRoleFn) DecodeAbi(buf []byte) error {
	return decodeMethod(TransferRoleMethod, buf, t)
}

// RoleFn is the input of acceptRole, roleHolder and pendingRoleHolder
type RoleFn struct {
	Method *abi.Method `abi:"-"`
	Role   types.Hash  `abi:"role"`
}

func (r *RoleFn) Sig() []byte {
	return r.Method.ID()
}

func (r *RoleFn) EncodeAbi() ([]byte, error) {
	return r.Method.Encode([]interface{}{r.Role})
}

func (r *RoleFn) DecodeAbi(buf []byte) error {
	return decodeMethod(r.Method, buf, r)
}

var (
	RoleTransferStartedEventType = abi.MustNewEvent("event RoleTransferStarted(bytes32 indexed role,address indexed currentHolder,address indexed pendingHolder,uint256 earliestAcceptTime)") //nolint:all
	RoleTransferredEventType     = abi.MustNewEvent("event RoleTransferred(bytes32 indexed role,address indexed previousHolder,address indexed newHolder)")                                   //nolint:all

	roleTransferStartedDataType = abi.MustNewType("tuple(uint256 earliestAcceptTime)")
)

type RoleTransferStartedEvent struct {
	Role               types.Hash    `abi:"role"`
	CurrentHolder      types.Address `abi:"currentHolder"`
	PendingHolder      types.Address `abi:"pendingHolder"`
	EarliestAcceptTime *big.Int      `abi:"earliestAcceptTime"`
}

func (r *RoleTransferStartedEvent) Sig() ethgo.Hash {
	return RoleTransferStartedEventType.ID()
}

func (r *RoleTransferStartedEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, RoleTransferStartedEventType,
		[]types.Hash{r.Role, AddressTopic(r.CurrentHolder), AddressTopic(r.PendingHolder)},
		roleTransferStartedDataType, []interface{}{r.EarliestAcceptTime})
}

func (r *RoleTransferStartedEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(RoleTransferStartedEventType, log, r)
}

type RoleTransferredEvent struct {
	Role           types.Hash    `abi:"role"`
	PreviousHolder types.Address `abi:"previousHolder"`
	NewHolder      types.Address `abi:"newHolder"`
}

func (r *RoleTransferredEvent) Sig() ethgo.Hash {
	return RoleTransferredEventType.ID()
}

func (r *RoleTransferredEvent) Encode(contract types.Address) (*types.Log, error) {
	return encodeLog(contract, RoleTransferredEventType,
		[]types.Hash{r.Role, AddressTopic(r.PreviousHolder), AddressTopic(r.NewHolder)}, nil, nil)
}

func (r *RoleTransferredEvent) ParseLog(log *types.Log) (bool, error) {
	return parseLog(RoleTransferredEventType, log, r)
}
