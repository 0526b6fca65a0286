package verifier

import (
	"math/big"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/types"
)

type fillKey struct {
	chainID   uint32
	token     types.Address
	recipient types.Address
}

func keyOf(out contractsapi.Output) fillKey {
	return fillKey{chainID: out.ChainID, token: out.Token, recipient: out.Recipient}
}

// fillPool holds the filled amounts of a block aggregated by destination
// chain, token and recipient
type fillPool map[fillKey]*big.Int

func (p fillPool) add(outputs []contractsapi.Output) {
	for _, out := range outputs {
		if out.Amount == nil {
			continue
		}

		key := keyOf(out)
		if p[key] == nil {
			p[key] = new(big.Int)
		}

		p[key].Add(p[key], out.Amount)
	}
}

func need(outputs []contractsapi.Output) map[fillKey]*big.Int {
	need := map[fillKey]*big.Int{}

	for _, out := range outputs {
		key := keyOf(out)
		if need[key] == nil {
			need[key] = new(big.Int)
		}

		if out.Amount != nil {
			need[key].Add(need[key], out.Amount)
		}
	}

	return need
}

// check returns the outputs the pool cannot cover
func (p fillPool) check(outputs []contractsapi.Output) []contractsapi.Output {
	required := need(outputs)

	var missing []contractsapi.Output

	for _, out := range outputs {
		key := keyOf(out)

		have := p[key]
		if have == nil {
			have = new(big.Int)
		}

		if have.Cmp(required[key]) < 0 {
			missing = append(missing, out)
		}
	}

	return missing
}

// consume takes outputs from the pool when every one of them is covered.
// Otherwise the pool is left untouched and the uncovered outputs are returned.
func (p fillPool) consume(outputs []contractsapi.Output) []contractsapi.Output {
	if missing := p.check(outputs); len(missing) > 0 {
		return missing
	}

	for key, amount := range need(outputs) {
		if amount.Sign() > 0 {
			p[key].Sub(p[key], amount)
		}
	}

	return nil
}
