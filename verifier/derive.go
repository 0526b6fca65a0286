package verifier

import (
	"fmt"
	"math/big"

	"github.com/armon/go-metrics"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/blockchain"
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/types"
)

// deriveRollupBlock builds the rollup block correlated with hb on top of the
// rollup head: host deposits and transacts first, then the submitted block, if
// its commitment held
func (v *Verifier) deriveRollupBlock(rollup *genesis.Rollup, hb *hostBlock, hostPool fillPool) (*Verdict, error) {
	chainID := rollup.Chain.ChainID()
	hostNumber := hb.block.Number()

	verdict := &Verdict{
		RollupChainID: chainID,
		HostBlock:     hostNumber,
		Orders:        []*OrderVerdict{},
		Exits:         []*Exit{},
	}

	sub := hb.submissions[chainID]

	params := blockchain.BlockParams{Timestamp: hb.block.Header.Timestamp}
	if sub != nil {
		verdict.Submission = sub.Submission
		params.Coinbase = sub.header.RewardAddress
	}

	bb, err := rollup.Chain.NewBlockBuilder(params)
	if err != nil {
		return nil, err
	}

	d := &deriver{
		v:       v,
		rollup:  rollup,
		chainID: chainID,
		builder: bb,
		nonce:   hostNumber << 16,
	}

	for _, receipt := range hb.receipts {
		if receipt.Status != types.ReceiptSuccess {
			continue
		}

		for _, log := range receipt.Logs {
			if err := d.hostLog(log, verdict); err != nil {
				return nil, err
			}
		}
	}

	if sub != nil && sub.Valid() {
		for _, tx := range sub.txs {
			if _, err := bb.AddTx(tx); err != nil {
				v.logger.Debug("rollup transaction failed", "chain", chainID, "hash", tx.Hash(), "err", err)
			}
		}

		verdict.Transactions = len(sub.txs)
	}

	block, receipts, err := bb.Seal()
	if err != nil {
		return nil, err
	}

	verdict.RollupBlock = block.Number()
	verdict.RollupBlockHash = block.Hash()

	if err := v.checkOrders(rollup, receipts, hostPool, verdict); err != nil {
		return nil, err
	}

	if verdict.ExitRoot, err = ExitRoot(verdict.Exits); err != nil {
		return nil, err
	}

	return verdict, nil
}

// deriver turns host events addressed to a rollup into rollup transactions
type deriver struct {
	v       *Verifier
	rollup  *genesis.Rollup
	chainID uint64
	builder *blockchain.BlockBuilder
	nonce   uint64
}

func (d *deriver) forChain(rollupChainID *big.Int) bool {
	return rollupChainID != nil && rollupChainID.IsUint64() && rollupChainID.Uint64() == d.chainID
}

func (d *deriver) hostLog(log *types.Log, verdict *Verdict) error {
	switch log.Address {
	case genesis.PassageAddr:
		var enter contractsapi.EnterEvent
		if ok, err := enter.ParseLog(log); err != nil {
			return err
		} else if ok {
			if !d.forChain(enter.RollupChainID) {
				return nil
			}

			verdict.Deposits++

			return d.enter(enter.RollupRecipient, enter.Amount)
		}

		var enterToken contractsapi.EnterTokenEvent
		if ok, err := enterToken.ParseLog(log); err != nil {
			return err
		} else if ok {
			if !d.forChain(enterToken.RollupChainID) {
				return nil
			}

			verdict.Deposits++

			return d.enterToken(enterToken.RollupRecipient, enterToken.Token, enterToken.Amount)
		}

	case genesis.TransactorAddr:
		var transact contractsapi.TransactEvent
		if ok, err := transact.ParseLog(log); err != nil {
			return err
		} else if ok {
			if !d.forChain(transact.RollupChainID) {
				return nil
			}

			verdict.Transacts++

			d.apply(&types.Transaction{
				From:  transact.Sender,
				To:    transact.To,
				Value: transact.Value,
				Input: transact.Data,
			})
		}
	}

	return nil
}

// enter mints native value on the rollup through the system account
func (d *deriver) enter(recipient types.Address, amount *big.Int) error {
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("deposit of %s overflows", amount)
	}

	if err := d.builder.Transition().Txn().AddBalance(genesis.SystemAddr, value); err != nil {
		return err
	}

	d.apply(&types.Transaction{
		From:  genesis.SystemAddr,
		To:    recipient,
		Value: amount,
	})

	return nil
}

func (d *deriver) enterToken(recipient, hostToken types.Address, amount *big.Int) error {
	rollupToken, ok := d.rollup.HostTokens[hostToken]
	if !ok {
		d.v.logger.Warn("deposit of unknown token", "chain", d.chainID, "token", hostToken)

		return nil
	}

	input, err := (&contractsapi.MintFn{To: recipient, Amount: amount}).EncodeAbi()
	if err != nil {
		return err
	}

	d.apply(&types.Transaction{
		From:  genesis.SystemAddr,
		To:    rollupToken,
		Input: input,
	})

	return nil
}

// apply includes a system transaction, a failure stays visible in its receipt
func (d *deriver) apply(tx *types.Transaction) {
	tx.Nonce = d.nonce
	d.nonce++

	if _, err := d.builder.AddTx(tx); err != nil {
		d.v.logger.Debug("system transaction failed", "chain", d.chainID, "hash", tx.Hash(), "err", err)
	}
}

// checkOrders matches the orders and exits of the rollup block against the
// fills of the host and rollup blocks
func (v *Verifier) checkOrders(rollup *genesis.Rollup, receipts []*types.Receipt, hostPool fillPool, verdict *Verdict) error {
	hostChainID := uint32(v.host.Chain.ChainID())
	rollupChainID := uint32(rollup.Chain.ChainID())

	rollupPool := fillPool{}

	for _, receipt := range receipts {
		for _, log := range receipt.Logs {
			if log.Address != genesis.RollupOrdersAddr {
				continue
			}

			var filled contractsapi.FilledEvent
			if ok, err := filled.ParseLog(log); err != nil {
				return err
			} else if ok {
				rollupPool.add(filled.Outputs)
			}
		}
	}

	hostTokens := make(map[types.Address]types.Address, len(rollup.HostTokens))
	for host, rollupToken := range rollup.HostTokens {
		hostTokens[rollupToken] = host
	}

	for _, receipt := range receipts {
		for _, log := range receipt.Logs {
			order, exit, err := parseOrder(log, hostChainID, hostTokens)
			if err != nil {
				return err
			}

			if order == nil {
				continue
			}

			order.TxHash = receipt.TxHash

			if exit != nil {
				verdict.Exits = append(verdict.Exits, exit)
			}

			order.Missing = consumeOrder(order.Outputs, hostChainID, rollupChainID, hostPool, rollupPool)
			verdict.Orders = append(verdict.Orders, order)

			if !order.Valid() {
				metrics.IncrCounter([]string{"verifier", "unfilled", order.Kind}, 1)
			}
		}
	}

	return nil
}

// consumeOrder checks every output against the pool of its destination chain
func consumeOrder(outputs []contractsapi.Output, hostChainID, rollupChainID uint32, hostPool, rollupPool fillPool) []contractsapi.Output {
	var hostOutputs, rollupOutputs []contractsapi.Output

	for _, out := range outputs {
		switch out.ChainID {
		case hostChainID:
			hostOutputs = append(hostOutputs, out)
		case rollupChainID:
			rollupOutputs = append(rollupOutputs, out)
		}
	}

	missing := append(hostPool.check(hostOutputs), rollupPool.check(rollupOutputs)...)
	if len(missing) > 0 {
		return missing
	}

	hostPool.consume(hostOutputs)
	rollupPool.consume(rollupOutputs)

	return nil
}

// parseOrder returns the outputs requested by an Order event of the rollup
// orders contract or by an exit of the rollup passage
func parseOrder(log *types.Log, hostChainID uint32, hostTokens map[types.Address]types.Address) (*OrderVerdict, *Exit, error) {
	switch log.Address {
	case genesis.RollupOrdersAddr:
		var order contractsapi.OrderEvent
		if ok, err := order.ParseLog(log); err != nil || !ok {
			return nil, nil, err
		}

		return &OrderVerdict{Kind: KindOrder, Outputs: order.Outputs}, nil, nil

	case genesis.RollupPassageAddr:
		var exit *Exit

		var native contractsapi.ExitEvent
		if ok, err := native.ParseLog(log); err != nil {
			return nil, nil, err
		} else if ok {
			exit = &Exit{Recipient: native.HostRecipient, Amount: native.Amount}
		}

		var tkn contractsapi.ExitTokenEvent
		if ok, err := tkn.ParseLog(log); err != nil {
			return nil, nil, err
		} else if ok {
			hostToken, known := hostTokens[tkn.Token]
			if !known {
				return nil, nil, fmt.Errorf("exit of unknown rollup token %s", tkn.Token)
			}

			exit = &Exit{Recipient: tkn.HostRecipient, Token: hostToken, Amount: tkn.Amount}
		}

		if exit == nil {
			return nil, nil, nil
		}

		return &OrderVerdict{
			Kind: KindExit,
			Outputs: []contractsapi.Output{{
				Token:     exit.Token,
				Amount:    exit.Amount,
				Recipient: exit.Recipient,
				ChainID:   hostChainID,
			}},
		}, exit, nil
	}

	return nil, nil, nil
}
