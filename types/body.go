package types

import (
	"github.com/umbracle/fastrlp"
)

// Body is the transaction list of a block
type Body struct {
	Transactions []*Transaction
}

func (b *Body) MarshalRLPTo(dst []byte) []byte {
	return MarshalRLPTo(b.MarshalRLPWith, dst)
}

func (b *Body) MarshalRLPWith(ar *fastrlp.Arena) *fastrlp.Value {
	if len(b.Transactions) == 0 {
		return ar.NewNullArray()
	}

	vv := ar.NewArray()
	for _, tx := range b.Transactions {
		vv.Set(tx.MarshalRLPWith(ar))
	}

	return vv
}

func (b *Body) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(b.UnmarshalRLPFrom, input)
}

func (b *Body) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	b.Transactions = make([]*Transaction, len(elems))

	for i, elem := range elems {
		tx := new(Transaction)
		if err := tx.UnmarshalRLPFrom(p, elem); err != nil {
			return err
		}

		b.Transactions[i] = tx
	}

	return nil
}
