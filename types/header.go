package types

import (
	"fmt"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/helper/keccak"
)

var marshalArenaPool fastrlp.ArenaPool

// Header represents a block header of a simulated host or rollup chain.
type Header struct {
	ParentHash   Hash     `json:"parentHash"`
	Number       uint64   `json:"number"`
	Timestamp    uint64   `json:"timestamp"`
	Miner        Address  `json:"miner"`
	TxRoot       Hash     `json:"transactionsRoot"`
	ReceiptsRoot Hash     `json:"receiptsRoot"`
	ExtraData    HexBytes `json:"extraData"`
	Hash         Hash     `json:"hash"`
}

// ComputeHash computes the hash of the header
func (h *Header) ComputeHash() *Header {
	ar := marshalArenaPool.Get()
	keccak.Keccak256Rlp(h.Hash[:0], h.MarshalRLPWith(ar))
	marshalArenaPool.Put(ar)

	return h
}

func (h *Header) Copy() *Header {
	hh := new(Header)
	*hh = *h

	hh.ExtraData = make([]byte, len(h.ExtraData))
	copy(hh.ExtraData, h.ExtraData)

	return hh
}

func (h *Header) MarshalRLP() []byte {
	return h.MarshalRLPTo(nil)
}

func (h *Header) MarshalRLPTo(dst []byte) []byte {
	return MarshalRLPTo(h.MarshalRLPWith, dst)
}

// MarshalRLPWith marshals the header to RLP with a specific fastrlp.Arena
func (h *Header) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewBytes(h.ParentHash.Bytes()))
	vv.Set(arena.NewUint(h.Number))
	vv.Set(arena.NewUint(h.Timestamp))
	vv.Set(arena.NewCopyBytes(h.Miner.Bytes()))
	vv.Set(arena.NewBytes(h.TxRoot.Bytes()))
	vv.Set(arena.NewBytes(h.ReceiptsRoot.Bytes()))
	vv.Set(arena.NewCopyBytes(h.ExtraData))

	return vv
}

func (h *Header) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(h.UnmarshalRLPFrom, input)
}

// UnmarshalRLPFrom unmarshals a Header in RLP format and recomputes its hash
func (h *Header) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if num := len(elems); num != 7 {
		return fmt.Errorf("incorrect number of elements to decode header, expected 7 but found %d", num)
	}

	keccak.Keccak256Rlp(h.Hash[:0], v)

	// parentHash
	if err = elems[0].GetHash(h.ParentHash[:]); err != nil {
		return err
	}
	// number
	if h.Number, err = elems[1].GetUint64(); err != nil {
		return err
	}
	// timestamp
	if h.Timestamp, err = elems[2].GetUint64(); err != nil {
		return err
	}
	// miner
	if err = elems[3].GetAddr(h.Miner[:]); err != nil {
		return err
	}
	// txroot
	if err = elems[4].GetHash(h.TxRoot[:]); err != nil {
		return err
	}
	// receiptroot
	if err = elems[5].GetHash(h.ReceiptsRoot[:]); err != nil {
		return err
	}
	// extraData
	if h.ExtraData, err = elems[6].GetBytes(h.ExtraData[:0]); err != nil {
		return err
	}

	return nil
}

type Block struct {
	Header       *Header
	Transactions []*Transaction
}

func (b *Block) Hash() Hash {
	return b.Header.Hash
}

func (b *Block) Number() uint64 {
	return b.Header.Number
}

func (b *Block) ParentHash() Hash {
	return b.Header.ParentHash
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(#%v, %d txs)", b.Number(), len(b.Transactions))
}

// CalculateTxRoot hashes the RLP list of transaction hashes
func CalculateTxRoot(txs []*Transaction) Hash {
	if len(txs) == 0 {
		return EmptyRootHash
	}

	ar := marshalArenaPool.Get()
	defer marshalArenaPool.Put(ar)

	vv := ar.NewArray()
	for _, tx := range txs {
		vv.Set(ar.NewCopyBytes(tx.Hash().Bytes()))
	}

	return BytesToHash(keccak.Keccak256Rlp(nil, vv))
}

// CalculateReceiptsRoot hashes the RLP list of receipts
func CalculateReceiptsRoot(receipts []*Receipt) Hash {
	if len(receipts) == 0 {
		return EmptyRootHash
	}

	ar := marshalArenaPool.Get()
	defer marshalArenaPool.Put(ar)

	vv := ar.NewArray()
	for _, r := range receipts {
		vv.Set(r.MarshalRLPWith(ar))
	}

	return BytesToHash(keccak.Keccak256Rlp(nil, vv))
}
