package storage

import (
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/helper/common"
	"github.com/0xPolygon/polygon-zenith/types"
)

// Batch collects writes of a KV that are applied atomically
type Batch interface {
	Delete(key []byte)
	Write() error
	Put(k []byte, data []byte)
}

// BatchWriter writes chain data into a batch
type BatchWriter struct {
	batch Batch
}

func NewBatchWriter(storage Storage) *BatchWriter {
	return &BatchWriter{batch: storage.NewBatch()}
}

func (b *BatchWriter) PutHeader(h *types.Header) {
	b.putRlp(HEADER, h.Hash.Bytes(), h)
}

func (b *BatchWriter) PutBody(hash types.Hash, body *types.Body) {
	b.putRlp(BODY, hash.Bytes(), body)
}

func (b *BatchWriter) PutHeadHash(h types.Hash) {
	b.putWithPrefix(HEAD, HASH, h.Bytes())
}

func (b *BatchWriter) PutTxLookup(hash types.Hash, blockHash types.Hash) {
	ar := &fastrlp.Arena{}
	vr := ar.NewBytes(blockHash.Bytes()).MarshalTo(nil)

	b.putWithPrefix(TX_LOOKUP_PREFIX, hash.Bytes(), vr)
}

func (b *BatchWriter) PutHeadNumber(n uint64) {
	b.putWithPrefix(HEAD, NUMBER, common.EncodeUint64ToBytes(n))
}

// PutReceipts stores receipts as JSON, it keeps the error string the RLP form drops
func (b *BatchWriter) PutReceipts(hash types.Hash, receipts []*types.Receipt) error {
	data, err := json.Marshal(receipts)
	if err != nil {
		return err
	}

	b.putWithPrefix(RECEIPTS, hash.Bytes(), data)

	return nil
}

// PutCanonicalHeader stores h and makes it the head of the chain
func (b *BatchWriter) PutCanonicalHeader(h *types.Header) {
	b.PutHeader(h)
	b.PutHeadHash(h.Hash)
	b.PutHeadNumber(h.Number)
	b.PutCanonicalHash(h.Number, h.Hash)
}

func (b *BatchWriter) PutCanonicalHash(n uint64, hash types.Hash) {
	b.putWithPrefix(CANONICAL, common.EncodeUint64ToBytes(n), hash.Bytes())
}

func (b *BatchWriter) putRlp(p, k []byte, raw types.RLPMarshaler) {
	b.putWithPrefix(p, k, raw.MarshalRLPTo(nil))
}

func (b *BatchWriter) putWithPrefix(p, k, data []byte) {
	b.batch.Put(key(p, k), data)
}

func (b *BatchWriter) WriteBatch() error {
	return b.batch.Write()
}
