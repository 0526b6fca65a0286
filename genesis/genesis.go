package genesis

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/blockchain"
	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
	"github.com/0xPolygon/polygon-zenith/orders"
	"github.com/0xPolygon/polygon-zenith/passage"
	"github.com/0xPolygon/polygon-zenith/permit2"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/token"
	"github.com/0xPolygon/polygon-zenith/transactor"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

var (
	// host chain
	ZenithAddr     = types.StringToAddress("0x1001")
	PassageAddr    = types.StringToAddress("0x1002")
	TransactorAddr = types.StringToAddress("0x1003")
	HostOrdersAddr = types.StringToAddress("0x1004")

	// rollup chains
	RollupPassageAddr = types.StringToAddress("0x2001")
	RollupOrdersAddr  = types.StringToAddress("0x2002")

	// Permit2Addr is the canonical Permit2 address, the same on every chain
	Permit2Addr = types.StringToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")

	// SystemAddr mints rollup tokens for deposits made on the host
	SystemAddr = types.StringToAddress("0xfffffffffffffffffffffffffffffffffffffffe")
)

// TokenPair is a token on the host and its counterpart minted on the rollups
type TokenPair struct {
	Symbol string
	Host   types.Address
	Rollup types.Address
}

// DefaultTokens are deployed when no token list is given
var DefaultTokens = []TokenPair{
	{Symbol: "USDC", Host: types.StringToAddress("0x7001"), Rollup: types.StringToAddress("0x8001")},
	{Symbol: "WETH", Host: types.StringToAddress("0x7002"), Rollup: types.StringToAddress("0x8002")},
}

// Params describe the contracts and balances of a deployment
type Params struct {
	HostChainID   uint64
	RollupChainID uint64
	Version       zenith.ProtocolVersion
	RoleDelay     uint64
	Timestamp     uint64

	SequencerAdmin types.Address
	TokenAdmin     types.Address
	GasAdmin       types.Address
	Sequencers     []types.Address

	// AllowedTokens may enter the rollups, every host token when empty
	AllowedTokens []types.Address
	Gas           transactor.GasConfig

	Tokens []TokenPair

	// Alloc funds accounts on the host with native value and every host token
	Alloc map[types.Address]uint64
}

// Host is the host chain with the settlement contracts deployed
type Host struct {
	Chain      *blockchain.Blockchain
	Zenith     *zenith.Zenith
	Passage    *passage.Passage
	Transactor *transactor.Transactor
	Orders     *orders.Orders
	Permit2    *permit2.Permit2
	Tokens     map[types.Address]*token.Token
}

// Rollup is a rollup chain with its side of the bridge deployed
type Rollup struct {
	Chain   *blockchain.Blockchain
	Passage *passage.RollupPassage
	Orders  *orders.Orders
	Permit2 *permit2.Permit2
	Tokens  map[types.Address]*token.Token

	// HostTokens maps host tokens to their rollup counterpart
	HostTokens map[types.Address]types.Address
}

func (p *Params) tokens() []TokenPair {
	if p.Tokens == nil {
		return DefaultTokens
	}

	return p.Tokens
}

// NewHost deploys the host contracts over db and writes the genesis block
func NewHost(logger hclog.Logger, db storage.Storage, p *Params) (*Host, error) {
	z, err := zenith.NewZenith(logger, ZenithAddr, p.Version, p.RoleDelay)
	if err != nil {
		return nil, err
	}

	h := &Host{
		Zenith:     z,
		Passage:    passage.NewPassage(logger, PassageAddr, Permit2Addr, p.RoleDelay),
		Transactor: transactor.NewTransactor(logger, TransactorAddr, PassageAddr, p.RoleDelay),
		Orders:     orders.NewHostOrders(logger, HostOrdersAddr, Permit2Addr),
		Permit2:    permit2.NewPermit2(Permit2Addr),
		Tokens:     map[types.Address]*token.Token{},
	}

	executor := state.NewExecutor(logger)

	if err := deploy(executor, map[types.Address]runtime.Runtime{
		ZenithAddr:     h.Zenith,
		PassageAddr:    h.Passage,
		TransactorAddr: h.Transactor,
		HostOrdersAddr: h.Orders,
		Permit2Addr:    h.Permit2,
	}); err != nil {
		return nil, err
	}

	allowed := p.AllowedTokens

	for _, pair := range p.tokens() {
		tkn := token.NewToken(pair.Symbol, pair.Host)
		if err := executor.Deploy(pair.Host, tkn); err != nil {
			return nil, err
		}

		h.Tokens[pair.Host] = tkn

		if len(p.AllowedTokens) == 0 {
			allowed = append(allowed, pair.Host)
		}
	}

	h.Chain = blockchain.NewBlockchain(logger, p.HostChainID, db, executor)

	err = h.Chain.WriteGenesis(&blockchain.Genesis{
		Timestamp: p.Timestamp,
		Alloc: func(transition *state.Transition) error {
			if err := h.Zenith.Init(transition, p.SequencerAdmin, p.Sequencers); err != nil {
				return err
			}

			if err := h.Passage.Init(transition, p.TokenAdmin, p.RollupChainID, allowed); err != nil {
				return err
			}

			h.Transactor.Init(transition, p.GasAdmin, p.RollupChainID, p.Gas)

			for _, tkn := range h.Tokens {
				tkn.Init(transition, p.TokenAdmin)
			}

			return fund(transition, p.Alloc, h.Tokens)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("host genesis: %w", err)
	}

	return h, nil
}

// NewRollup deploys the rollup contracts of chainID over db and writes the genesis block
func NewRollup(logger hclog.Logger, chainID uint64, db storage.Storage, p *Params) (*Rollup, error) {
	r := &Rollup{
		Passage:    passage.NewRollupPassage(logger, RollupPassageAddr, Permit2Addr),
		Orders:     orders.NewRollupOrders(logger, RollupOrdersAddr, Permit2Addr),
		Permit2:    permit2.NewPermit2(Permit2Addr),
		Tokens:     map[types.Address]*token.Token{},
		HostTokens: map[types.Address]types.Address{},
	}

	executor := state.NewExecutor(logger)

	if err := deploy(executor, map[types.Address]runtime.Runtime{
		RollupPassageAddr: r.Passage,
		RollupOrdersAddr:  r.Orders,
		Permit2Addr:       r.Permit2,
	}); err != nil {
		return nil, err
	}

	for _, pair := range p.tokens() {
		tkn := token.NewToken(pair.Symbol, pair.Rollup)
		if err := executor.Deploy(pair.Rollup, tkn); err != nil {
			return nil, err
		}

		r.Tokens[pair.Rollup] = tkn
		r.HostTokens[pair.Host] = pair.Rollup
	}

	r.Chain = blockchain.NewBlockchain(logger, chainID, db, executor)

	err := r.Chain.WriteGenesis(&blockchain.Genesis{
		Timestamp: p.Timestamp,
		Alloc: func(transition *state.Transition) error {
			for _, tkn := range r.Tokens {
				tkn.Init(transition, SystemAddr)
			}

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rollup %d genesis: %w", chainID, err)
	}

	return r, nil
}

func deploy(executor *state.Executor, contracts map[types.Address]runtime.Runtime) error {
	for addr, rt := range contracts {
		if err := executor.Deploy(addr, rt); err != nil {
			return err
		}
	}

	return nil
}

func fund(transition *state.Transition, alloc map[types.Address]uint64, tokens map[types.Address]*token.Token) error {
	for addr, amount := range alloc {
		if err := transition.Txn().AddBalance(addr, uint256.NewInt(amount)); err != nil {
			return err
		}

		for _, tkn := range tokens {
			if err := tkn.Mint(transition, addr, uint256.NewInt(amount)); err != nil {
				return err
			}
		}
	}

	return nil
}
