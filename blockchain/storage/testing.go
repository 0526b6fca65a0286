package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/types"
)

type PlaceholderStorage func(t *testing.T) (Storage, func())

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

// TestStorage tests a set of tests on a storage
func TestStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testCanonicalChain", func(t *testing.T) {
		testCanonicalChain(t, m)
	})
	t.Run("testHead", func(t *testing.T) {
		testHead(t, m)
	})
	t.Run("testHeader", func(t *testing.T) {
		testHeader(t, m)
	})
	t.Run("testBody", func(t *testing.T) {
		testBody(t, m)
	})
	t.Run("testWriteCanonicalHeader", func(t *testing.T) {
		testWriteCanonicalHeader(t, m)
	})
	t.Run("testReceipts", func(t *testing.T) {
		testReceipts(t, m)
	})
	t.Run("testTxLookup", func(t *testing.T) {
		testTxLookup(t, m)
	})
	t.Run("testMissing", func(t *testing.T) {
		testMissing(t, m)
	})
}

func testCanonicalChain(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	var cases = []struct {
		Number     uint64
		ParentHash types.Hash
	}{
		{
			Number:     1,
			ParentHash: types.StringToHash("111"),
		},
		{
			Number:     1,
			ParentHash: types.StringToHash("222"),
		},
		{
			Number:     2,
			ParentHash: types.StringToHash("111"),
		},
	}

	for _, cc := range cases {
		batch := NewBatchWriter(s)

		h := (&types.Header{
			Number:     cc.Number,
			ParentHash: cc.ParentHash,
			ExtraData:  []byte{0x1},
		}).ComputeHash()

		batch.PutHeader(h)
		batch.PutCanonicalHash(cc.Number, h.Hash)

		require.NoError(t, batch.WriteBatch())

		data, ok := s.ReadCanonicalHash(cc.Number)
		require.True(t, ok)
		require.Equal(t, h.Hash, data)
	}
}

func testHead(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	for i := uint64(0); i < 5; i++ {
		batch := NewBatchWriter(s)

		h := (&types.Header{
			Number:    i,
			ExtraData: []byte{},
		}).ComputeHash()

		batch.PutHeader(h)
		batch.PutHeadNumber(i)
		batch.PutHeadHash(h.Hash)

		require.NoError(t, batch.WriteBatch())

		n2, ok := s.ReadHeadNumber()
		require.True(t, ok)
		require.Equal(t, i, n2)

		hash, ok := s.ReadHeadHash()
		require.True(t, ok)
		require.Equal(t, h.Hash, hash)
	}
}

func testHeader(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	header := (&types.Header{
		Number:       5,
		ParentHash:   types.StringToHash("11"),
		Timestamp:    10,
		Miner:        addr1,
		TxRoot:       hash1,
		ReceiptsRoot: hash2,
		ExtraData:    []byte{0x1},
	}).ComputeHash()

	batch := NewBatchWriter(s)
	batch.PutHeader(header)

	require.NoError(t, batch.WriteBatch())

	header1, err := s.ReadHeader(header.Hash)
	require.NoError(t, err)
	require.Equal(t, header, header1)
}

func testBody(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	header := (&types.Header{
		Number:    5,
		Timestamp: 10,
		ExtraData: []byte{}, // if not set it will fail
	}).ComputeHash()

	batch := NewBatchWriter(s)
	batch.PutHeader(header)

	require.NoError(t, batch.WriteBatch())

	t0 := &types.Transaction{
		Nonce: 0,
		From:  addr1,
		To:    addr2,
		Value: big.NewInt(1),
		Input: []byte{0x1, 0x2},
	}

	t1 := &types.Transaction{
		Nonce:      1,
		From:       addr2,
		To:         addr1,
		Value:      big.NewInt(2),
		Input:      []byte{},
		BlobHashes: []types.Hash{hash1},
	}

	body := &types.Body{Transactions: []*types.Transaction{t0, t1}}

	batch = NewBatchWriter(s)
	batch.PutBody(header.Hash, body)

	require.NoError(t, batch.WriteBatch())

	body1, err := s.ReadBody(header.Hash)
	require.NoError(t, err)
	require.Len(t, body1.Transactions, 2)

	for i, tx := range body.Transactions {
		require.Equal(t, tx.Hash(), body1.Transactions[i].Hash())
	}

	// an empty body round trips too
	batch = NewBatchWriter(s)
	batch.PutBody(hash1, &types.Body{})

	require.NoError(t, batch.WriteBatch())

	empty, err := s.ReadBody(hash1)
	require.NoError(t, err)
	require.Empty(t, empty.Transactions)
}

func testWriteCanonicalHeader(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	h := (&types.Header{
		Number:    100,
		ExtraData: []byte{0x1},
	}).ComputeHash()

	batch := NewBatchWriter(s)
	batch.PutCanonicalHeader(h)

	require.NoError(t, batch.WriteBatch())

	hh, err := s.ReadHeader(h.Hash)
	require.NoError(t, err)
	require.Equal(t, h, hh)

	headHash, ok := s.ReadHeadHash()
	require.True(t, ok)
	require.Equal(t, h.Hash, headHash)

	headNum, ok := s.ReadHeadNumber()
	require.True(t, ok)
	require.Equal(t, h.Number, headNum)

	canHash, ok := s.ReadCanonicalHash(h.Number)
	require.True(t, ok)
	require.Equal(t, h.Hash, canHash)
}

func testReceipts(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	receipts := []*types.Receipt{
		{
			TxHash: hash1,
			Status: types.ReceiptSuccess,
			Logs: []*types.Log{
				{
					Address: addr1,
					Topics:  []types.Hash{hash1, hash2},
					Data:    []byte{0x1, 0x2},
				},
			},
		},
		{
			TxHash:     hash2,
			Status:     types.ReceiptFailed,
			Logs:       []*types.Log{},
			RevertData: []byte{0xde, 0xad},
			Error:      "execution reverted",
		},
	}

	batch := NewBatchWriter(s)
	require.NoError(t, batch.PutReceipts(hash1, receipts))
	require.NoError(t, batch.WriteBatch())

	found, err := s.ReadReceipts(hash1)
	require.NoError(t, err)
	require.Equal(t, receipts, found)
}

func testTxLookup(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	batch := NewBatchWriter(s)
	batch.PutTxLookup(hash1, hash2)

	require.NoError(t, batch.WriteBatch())

	blockHash, ok := s.ReadTxLookup(hash1)
	require.True(t, ok)
	require.Equal(t, hash2, blockHash)
}

func testMissing(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	_, ok := s.ReadHeadHash()
	require.False(t, ok)

	_, ok = s.ReadCanonicalHash(1)
	require.False(t, ok)

	_, err := s.ReadHeader(hash1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.ReadReceipts(hash1)
	require.ErrorIs(t, err, ErrNotFound)
}
