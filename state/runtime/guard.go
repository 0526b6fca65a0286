package runtime

import (
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	reentrancyGuardSlot = crypto.Keccak256Hash([]byte("zenith.reentrancy.guard"))
	entered             = types.BytesToHash([]byte{1})
)

// NonReentrant runs fn holding the transient reentrancy lock of the contract.
// The lock lives in transient storage, so it never outlives the transaction.
func NonReentrant(c *Contract, host Host, fn func() *ExecutionResult) *ExecutionResult {
	if host.GetTransientStorage(c.Address, reentrancyGuardSlot) == entered {
		return Failure(contractsapi.ReentrancyGuardReentrantCallError.Revert())
	}

	host.SetTransientStorage(c.Address, reentrancyGuardSlot, entered)
	res := fn()
	host.SetTransientStorage(c.Address, reentrancyGuardSlot, types.ZeroHash)

	return res
}
