package roles

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	// SequencerAdmin manages the sequencer set of the block commitment contract
	SequencerAdmin = crypto.Keccak256Hash([]byte("SEQUENCER_ADMIN"))
	// TokenAdmin manages the enter allow-list and withdrawals of the passage
	TokenAdmin = crypto.Keccak256Hash([]byte("TOKEN_ADMIN"))
	// GasAdmin manages the transact gas ceilings
	GasAdmin = crypto.Keccak256Hash([]byte("GAS_ADMIN"))
)

var methods = []*abi.Method{
	contractsapi.TransferRoleMethod,
	contractsapi.AcceptRoleMethod,
	contractsapi.RoleHolderMethod,
	contractsapi.PendingRoleHolderMethod,
}

const (
	holderOffset = iota
	pendingOffset
	earliestAcceptOffset
)

// Record is the ownership state of a single role
type Record struct {
	Holder             types.Address
	Pending            types.Address
	EarliestAcceptTime uint64
}

// Manager keeps the role records of a contract inside that contract's storage.
// A role changes hands in two steps: the holder proposes a successor, and the
// successor accepts once the transfer delay has elapsed.
type Manager struct {
	slot  types.Hash
	delay uint64
	gates map[types.Hash]*contractsapi.CustomError
}

// NewManager creates a manager storing records in the mapping at slot
func NewManager(slot types.Hash, delay uint64) *Manager {
	return &Manager{
		slot:  slot,
		delay: delay,
		gates: map[types.Hash]*contractsapi.CustomError{},
	}
}

// WithGate sets the error raised when a caller other than the holder uses role
func (m *Manager) WithGate(role types.Hash, gateErr *contractsapi.CustomError) *Manager {
	m.gates[role] = gateErr

	return m
}

// Delay returns the minimum time between a transfer proposal and its acceptance
func (m *Manager) Delay() uint64 {
	return m.delay
}

func (m *Manager) recordSlot(role types.Hash, offset uint64) types.Hash {
	return state.OffsetSlot(state.MappingSlot(role, m.slot), offset)
}

// Get reads the record of role
func (m *Manager) Get(host runtime.Host, contract types.Address, role types.Hash) Record {
	return Record{
		Holder:             runtime.GetAddress(host, contract, m.recordSlot(role, holderOffset)),
		Pending:            runtime.GetAddress(host, contract, m.recordSlot(role, pendingOffset)),
		EarliestAcceptTime: runtime.GetUint(host, contract, m.recordSlot(role, earliestAcceptOffset)).Uint64(),
	}
}

func (m *Manager) set(host runtime.Host, contract types.Address, role types.Hash, rec Record) {
	runtime.SetAddress(host, contract, m.recordSlot(role, holderOffset), rec.Holder)
	runtime.SetAddress(host, contract, m.recordSlot(role, pendingOffset), rec.Pending)
	runtime.SetUint(host, contract, m.recordSlot(role, earliestAcceptOffset), uint256.NewInt(rec.EarliestAcceptTime))
}

// Grant assigns role directly, used when a contract is initialized
func (m *Manager) Grant(host runtime.Host, contract types.Address, role types.Hash, holder types.Address) {
	m.set(host, contract, role, Record{Holder: holder})
}

// Holder returns the current holder of role
func (m *Manager) Holder(host runtime.Host, contract types.Address, role types.Hash) types.Address {
	return runtime.GetAddress(host, contract, m.recordSlot(role, holderOffset))
}

// OnlyHolder fails with the gate error of role unless the caller holds it
func (m *Manager) OnlyHolder(host runtime.Host, c *runtime.Contract, role types.Hash) error {
	if m.Holder(host, c.Address, role) == c.Caller {
		return nil
	}

	if gateErr, ok := m.gates[role]; ok {
		return gateErr.Revert()
	}

	return contractsapi.OnlyRoleHolderError.Revert(role)
}

// Transfer proposes newHolder as the next holder of role. Proposing the zero
// address cancels a pending transfer.
func (m *Manager) Transfer(host runtime.Host, c *runtime.Contract, role types.Hash, newHolder types.Address) error {
	rec := m.Get(host, c.Address, role)
	if rec.Holder != c.Caller {
		return contractsapi.OnlyRoleHolderError.Revert(role)
	}

	rec.Pending = newHolder
	rec.EarliestAcceptTime = 0

	if newHolder != types.ZeroAddress {
		rec.EarliestAcceptTime = host.GetTxContext().Timestamp + m.delay
	}

	m.set(host, c.Address, role, rec)

	return runtime.Emit(host, c.Address, &contractsapi.RoleTransferStartedEvent{
		Role:               role,
		CurrentHolder:      rec.Holder,
		PendingHolder:      newHolder,
		EarliestAcceptTime: new(big.Int).SetUint64(rec.EarliestAcceptTime),
	})
}

// Accept completes a pending transfer of role to the caller
func (m *Manager) Accept(host runtime.Host, c *runtime.Contract, role types.Hash) error {
	rec := m.Get(host, c.Address, role)
	if rec.Pending == types.ZeroAddress || rec.Pending != c.Caller {
		return contractsapi.NotPendingHolderError.Revert()
	}

	if host.GetTxContext().Timestamp < rec.EarliestAcceptTime {
		return contractsapi.RoleTransferTooEarlyError.Revert(new(big.Int).SetUint64(rec.EarliestAcceptTime))
	}

	previous := rec.Holder
	m.set(host, c.Address, role, Record{Holder: c.Caller})

	return runtime.Emit(host, c.Address, &contractsapi.RoleTransferredEvent{
		Role:           role,
		PreviousHolder: previous,
		NewHolder:      c.Caller,
	})
}

// Run serves the role management entrypoints of the owning contract. The
// second return value is false when input does not address a role method.
func (m *Manager) Run(c *runtime.Contract, host runtime.Host) (*runtime.ExecutionResult, bool) {
	input := c.Input

	if !Handles(input) {
		return nil, false
	}

	if res := runtime.NotPayable(c); res != nil {
		return res, true
	}

	switch {
	case contractsapi.MatchSelector(contractsapi.TransferRoleMethod, input):
		var fn contractsapi.TransferRoleFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err), true
		}

		return result(m.Transfer(host, c, fn.Role, fn.NewHolder)), true

	case contractsapi.MatchSelector(contractsapi.AcceptRoleMethod, input):
		fn := contractsapi.RoleFn{Method: contractsapi.AcceptRoleMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err), true
		}

		return result(m.Accept(host, c, fn.Role)), true

	case contractsapi.MatchSelector(contractsapi.RoleHolderMethod, input):
		fn := contractsapi.RoleFn{Method: contractsapi.RoleHolderMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err), true
		}

		return runtime.Returns(contractsapi.RoleHolderMethod, m.Holder(host, c.Address, fn.Role)), true

	case contractsapi.MatchSelector(contractsapi.PendingRoleHolderMethod, input):
		fn := contractsapi.RoleFn{Method: contractsapi.PendingRoleHolderMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err), true
		}

		rec := m.Get(host, c.Address, fn.Role)

		return runtime.Returns(contractsapi.PendingRoleHolderMethod,
			rec.Pending, new(big.Int).SetUint64(rec.EarliestAcceptTime)), true
	}

	return nil, false
}

// Handles reports whether input calls one of the role management methods
func Handles(input []byte) bool {
	for _, method := range methods {
		if contractsapi.MatchSelector(method, input) {
			return true
		}
	}

	return false
}

func result(err error) *runtime.ExecutionResult {
	if err != nil {
		return runtime.Failure(err)
	}

	return runtime.Success(nil)
}
