package storage

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	jsoniter "github.com/json-iterator/go"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/helper/common"
	"github.com/0xPolygon/polygon-zenith/types"
)

// prefix

var (
	// HEADER is the header prefix
	HEADER = []byte("h")

	// HEAD is the chain head prefix
	HEAD = []byte("o")

	// CANONICAL is the prefix for the canonical chain numbers
	CANONICAL = []byte("c")

	// BODY is the prefix for bodies
	BODY = []byte("b")

	// RECEIPTS is the prefix for receipts
	RECEIPTS = []byte("r")

	// TX_LOOKUP_PREFIX is the prefix for transaction lookups
	TX_LOOKUP_PREFIX = []byte("l")
)

// sub-prefix

var (
	HASH   = []byte("hash")
	NUMBER = []byte("number")
)

var (
	// ErrNotFound is returned for keys missing from the storage
	ErrNotFound = errors.New("not found")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// KV is a key value storage interface
type KV interface {
	Close() error
	Get(p []byte) ([]byte, bool, error)
	NewBatch() Batch
}

// KeyValueStorage is a generic storage for kv databases
type KeyValueStorage struct {
	logger hclog.Logger
	db     KV
}

func NewKeyValueStorage(logger hclog.Logger, db KV) Storage {
	return &KeyValueStorage{logger: logger, db: db}
}

// -- canonical hash --

// ReadCanonicalHash gets the hash from the number of the canonical chain
func (s *KeyValueStorage) ReadCanonicalHash(n uint64) (types.Hash, bool) {
	data, ok := s.get(CANONICAL, common.EncodeUint64ToBytes(n))
	if !ok {
		return types.Hash{}, false
	}

	return types.BytesToHash(data), true
}

// -- head --

// ReadHeadHash returns the hash of the head
func (s *KeyValueStorage) ReadHeadHash() (types.Hash, bool) {
	data, ok := s.get(HEAD, HASH)
	if !ok {
		return types.Hash{}, false
	}

	return types.BytesToHash(data), true
}

// ReadHeadNumber returns the number of the head
func (s *KeyValueStorage) ReadHeadNumber() (uint64, bool) {
	data, ok := s.get(HEAD, NUMBER)
	if !ok {
		return 0, false
	}

	if len(data) != 8 {
		return 0, false
	}

	return common.EncodeBytesToUint64(data), true
}

// -- header --

// ReadHeader reads the header
func (s *KeyValueStorage) ReadHeader(hash types.Hash) (*types.Header, error) {
	header := &types.Header{}
	if err := s.readRLP(HEADER, hash.Bytes(), header); err != nil {
		return nil, err
	}

	return header, nil
}

// -- body --

// ReadBody reads the body
func (s *KeyValueStorage) ReadBody(hash types.Hash) (*types.Body, error) {
	body := &types.Body{}
	if err := s.readRLP(BODY, hash.Bytes(), body); err != nil {
		return nil, err
	}

	return body, nil
}

// -- receipts --

// ReadReceipts reads the receipts
func (s *KeyValueStorage) ReadReceipts(hash types.Hash) ([]*types.Receipt, error) {
	data, ok, err := s.db.Get(key(RECEIPTS, hash.Bytes()))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotFound
	}

	var receipts []*types.Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, fmt.Errorf("receipts of %s: %w", hash, err)
	}

	return receipts, nil
}

// -- tx lookup --

// ReadTxLookup returns the hash of the block including the transaction
func (s *KeyValueStorage) ReadTxLookup(hash types.Hash) (types.Hash, bool) {
	data, ok := s.get(TX_LOOKUP_PREFIX, hash.Bytes())
	if !ok {
		return types.Hash{}, false
	}

	parser := &fastrlp.Parser{}

	v, err := parser.Parse(data)
	if err != nil {
		return types.Hash{}, false
	}

	blockHash := []byte{}

	blockHash, err = v.GetBytes(blockHash[:0], 32)
	if err != nil {
		return types.Hash{}, false
	}

	return types.BytesToHash(blockHash), true
}

// NewBatch starts a set of writes applied together
func (s *KeyValueStorage) NewBatch() Batch {
	return s.db.NewBatch()
}

func (s *KeyValueStorage) readRLP(p, k []byte, obj types.RLPUnmarshaler) error {
	data, ok, err := s.db.Get(key(p, k))
	if err != nil {
		return err
	}

	if !ok {
		return ErrNotFound
	}

	return obj.UnmarshalRLP(data)
}

func (s *KeyValueStorage) get(p []byte, k []byte) ([]byte, bool) {
	data, ok, err := s.db.Get(key(p, k))
	if err != nil {
		s.logger.Error("failed to read storage", "key", string(p), "err", err)

		return nil, false
	}

	return data, ok
}

// Close closes the connection with the db
func (s *KeyValueStorage) Close() error {
	return s.db.Close()
}

func key(p, k []byte) []byte {
	return append(append([]byte{}, p...), k...)
}
