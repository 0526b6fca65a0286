package types

import (
	"fmt"
	"math/big"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/helper/keccak"
)

// Transaction is a message applied by the simulator. Sender authentication is
// the caller's concern, so From is carried explicitly instead of a signature.
type Transaction struct {
	Nonce      uint64
	From       Address
	To         Address
	Value      *big.Int
	Input      []byte
	BlobHashes []Hash
}

// Hash returns the keccak256 hash of the RLP encoded transaction
func (t *Transaction) Hash() Hash {
	ar := marshalArenaPool.Get()
	defer marshalArenaPool.Put(ar)

	var hash Hash

	keccak.Keccak256Rlp(hash[:0], t.MarshalRLPWith(ar))

	return hash
}

// Copy returns a deep copy of the transaction
func (t *Transaction) Copy() *Transaction {
	tt := new(Transaction)
	*tt = *t

	tt.Value = new(big.Int)
	if t.Value != nil {
		tt.Value.Set(t.Value)
	}

	tt.Input = make([]byte, len(t.Input))
	copy(tt.Input, t.Input)

	tt.BlobHashes = make([]Hash, len(t.BlobHashes))
	copy(tt.BlobHashes, t.BlobHashes)

	return tt
}

func (t *Transaction) MarshalRLP() []byte {
	return t.MarshalRLPTo(nil)
}

func (t *Transaction) MarshalRLPTo(dst []byte) []byte {
	return MarshalRLPTo(t.MarshalRLPWith, dst)
}

func (t *Transaction) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	value := t.Value
	if value == nil {
		value = big.NewInt(0)
	}

	vv.Set(arena.NewUint(t.Nonce))
	vv.Set(arena.NewCopyBytes(t.From.Bytes()))
	vv.Set(arena.NewCopyBytes(t.To.Bytes()))
	vv.Set(arena.NewBigInt(value))
	vv.Set(arena.NewCopyBytes(t.Input))

	blobs := arena.NewArray()
	for _, h := range t.BlobHashes {
		blobs.Set(arena.NewCopyBytes(h.Bytes()))
	}

	vv.Set(blobs)

	return vv
}

func (t *Transaction) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(t.UnmarshalRLPFrom, input)
}

func (t *Transaction) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 6 {
		return fmt.Errorf("incorrect number of elements to decode transaction, expected 6 but found %d", len(elems))
	}

	if t.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}

	if err = elems[1].GetAddr(t.From[:]); err != nil {
		return err
	}

	if err = elems[2].GetAddr(t.To[:]); err != nil {
		return err
	}

	t.Value = new(big.Int)
	if err = elems[3].GetBigInt(t.Value); err != nil {
		return err
	}

	if t.Input, err = elems[4].GetBytes(t.Input[:0]); err != nil {
		return err
	}

	blobElems, err := elems[5].GetElems()
	if err != nil {
		return err
	}

	t.BlobHashes = make([]Hash, len(blobElems))
	for i, elem := range blobElems {
		if err := elem.GetHash(t.BlobHashes[i][:]); err != nil {
			return err
		}
	}

	return nil
}
