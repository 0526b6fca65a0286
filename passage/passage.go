package passage

import (
	"math/big"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/roles"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/types"
)

var (
	canEnterSlot             = types.BytesToHash([]byte{0})
	defaultRollupChainIDSlot = types.BytesToHash([]byte{1})
	rolesSlot                = types.BytesToHash([]byte{2})
)

// Passage is the host side of the bridge. Native value and allow-listed tokens
// enter the rollup through it, the token admin may withdraw what it holds.
type Passage struct {
	logger  hclog.Logger
	Address types.Address
	Permit2 types.Address

	roles *roles.Manager
}

// NewPassage creates the host passage deployed at addr
func NewPassage(logger hclog.Logger, addr, permit2Addr types.Address, roleDelay uint64) *Passage {
	return &Passage{
		logger:  logger.Named("passage"),
		Address: addr,
		Permit2: permit2Addr,
		roles: roles.NewManager(rolesSlot, roleDelay).
			WithGate(roles.TokenAdmin, contractsapi.OnlyTokenAdminError),
	}
}

func (p *Passage) Name() string {
	return "passage"
}

// Init sets the token admin, the default rollup chain and the initial allow-list
func (p *Passage) Init(host runtime.Host, tokenAdmin types.Address, defaultRollupChainID uint64, allowed []types.Address) error {
	p.roles.Grant(host, p.Address, roles.TokenAdmin, tokenAdmin)
	runtime.SetUint(host, p.Address, defaultRollupChainIDSlot, uint256.NewInt(defaultRollupChainID))

	for _, tkn := range allowed {
		if err := p.configureEnter(host, tkn, true); err != nil {
			return err
		}
	}

	return nil
}

// DefaultRollupChainID returns the chain entered by the overloads without a chain id
func (p *Passage) DefaultRollupChainID(host runtime.Host) *uint256.Int {
	return runtime.GetUint(host, p.Address, defaultRollupChainIDSlot)
}

// CanEnter reports whether tkn is allow-listed
func (p *Passage) CanEnter(host runtime.Host, tkn types.Address) bool {
	return runtime.GetBool(host, p.Address, state.MappingSlot(state.AddressKey(tkn), canEnterSlot))
}

func (p *Passage) configureEnter(host runtime.Host, tkn types.Address, canEnter bool) error {
	if p.CanEnter(host, tkn) == canEnter {
		return nil
	}

	runtime.SetBool(host, p.Address, state.MappingSlot(state.AddressKey(tkn), canEnterSlot), canEnter)

	p.logger.Debug("enter configured", "token", tkn, "can enter", canEnter)

	return runtime.Emit(host, p.Address, &contractsapi.EnterConfiguredEvent{Token: tkn, CanEnter: canEnter})
}

func (p *Passage) enter(host runtime.Host, rollupChainID *big.Int, recipient types.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	return runtime.Emit(host, p.Address, &contractsapi.EnterEvent{
		RollupChainID:   rollupChainID,
		RollupRecipient: recipient,
		Amount:          amount.ToBig(),
	})
}

// enterToken runs once the tokens are held by the passage
func (p *Passage) enterToken(host runtime.Host, rollupChainID *big.Int, recipient, tkn types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}

	if !p.CanEnter(host, tkn) {
		return contractsapi.DisallowedEnterError.Revert(tkn)
	}

	return runtime.Emit(host, p.Address, &contractsapi.EnterTokenEvent{
		RollupChainID:   rollupChainID,
		RollupRecipient: recipient,
		Token:           tkn,
		Amount:          amount,
	})
}

func (p *Passage) withdraw(host runtime.Host, c *runtime.Contract, fn *contractsapi.WithdrawFn) error {
	if fn.Token == types.ZeroAddress {
		if _, err := runtime.Call(host, c, fn.Recipient, runtime.ToUint256(fn.Amount), nil); err != nil {
			return err
		}
	} else if err := token.Transfer(host, c, fn.Token, fn.Recipient, fn.Amount); err != nil {
		return err
	}

	p.logger.Info("withdrawal", "token", fn.Token, "recipient", fn.Recipient, "amount", fn.Amount)

	return runtime.Emit(host, p.Address, &contractsapi.WithdrawalEvent{
		Token:     fn.Token,
		Recipient: fn.Recipient,
		Amount:    fn.Amount,
	})
}

func (p *Passage) resolveChainID(host runtime.Host, rollupChainID *big.Int) *big.Int {
	if rollupChainID == nil {
		return p.DefaultRollupChainID(host).ToBig()
	}

	return rollupChainID
}

// Run implements the runtime.Runtime interface
func (p *Passage) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	input := c.Input

	// plain value transfers enter the default rollup chain for the sender
	if len(input) == 0 {
		return result(p.enter(host, p.DefaultRollupChainID(host).ToBig(), c.Caller, c.Value))
	}

	if res, ok := p.roles.Run(c, host); ok {
		return res
	}

	if contractsapi.MatchSelector(contractsapi.EnterMethod, input) ||
		contractsapi.MatchSelector(contractsapi.EnterDefaultMethod, input) {
		var fn contractsapi.EnterFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return result(p.enter(host, p.resolveChainID(host, fn.RollupChainID), fn.RollupRecipient, c.Value))
	}

	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	switch {
	case contractsapi.MatchSelector(contractsapi.EnterTokenMethod, input),
		contractsapi.MatchSelector(contractsapi.EnterTokenDefaultMethod, input):
		var fn contractsapi.EnterTokenFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			if err := token.TransferFrom(host, c, fn.Token, c.Caller, p.Address, fn.Amount); err != nil {
				return runtime.Failure(err)
			}

			return result(p.enterToken(host, p.resolveChainID(host, fn.RollupChainID), fn.RollupRecipient, fn.Token, fn.Amount))
		})

	case contractsapi.MatchSelector(contractsapi.EnterTokenPermit2Method, input):
		var fn contractsapi.EnterTokenPermit2Fn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			err := permit2.PermitWitnessTransferFrom(host, c, p.Permit2, fn.Permit2,
				permit2.TransferDetails(fn.Permit2.Permit, p.Address),
				permit2.EnterWitness(fn.RollupChainID, fn.RollupRecipient))
			if err != nil {
				return runtime.Failure(err)
			}

			permitted := fn.Permit2.Permit.Permitted

			return result(p.enterToken(host, fn.RollupChainID, fn.RollupRecipient, permitted.Token, permitted.Amount))
		})

	case contractsapi.MatchSelector(contractsapi.ConfigureEnterMethod, input):
		var fn contractsapi.ConfigureEnterFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := p.roles.OnlyHolder(host, c, roles.TokenAdmin); err != nil {
			return runtime.Failure(err)
		}

		return result(p.configureEnter(host, fn.Token, fn.CanEnter))

	case contractsapi.MatchSelector(contractsapi.WithdrawMethod, input),
		contractsapi.MatchSelector(contractsapi.WithdrawNativeMethod, input):
		var fn contractsapi.WithdrawFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := p.roles.OnlyHolder(host, c, roles.TokenAdmin); err != nil {
			return runtime.Failure(err)
		}

		return runtime.NonReentrant(c, host, func() *runtime.ExecutionResult {
			return result(p.withdraw(host, c, &fn))
		})

	case contractsapi.MatchSelector(contractsapi.CanEnterMethod, input):
		var fn contractsapi.CanEnterFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.CanEnterMethod, p.CanEnter(host, fn.Token))

	case contractsapi.MatchSelector(contractsapi.DefaultRollupChainIDMethod, input):
		return runtime.Returns(contractsapi.DefaultRollupChainIDMethod, p.DefaultRollupChainID(host).ToBig())
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}

func result(err error) *runtime.ExecutionResult {
	if err != nil {
		return runtime.Failure(err)
	}

	return runtime.Success(nil)
}
