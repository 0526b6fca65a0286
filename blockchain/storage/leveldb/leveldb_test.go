package leveldb

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
	"github.com/0xPolygon/polygon-zenith/types"
)

func newStorage(t *testing.T) (storage.Storage, func()) {
	t.Helper()

	s, err := NewLevelDBStorage(t.TempDir(), false, hclog.NewNullLogger())
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
	}
}

func TestStorage(t *testing.T) {
	t.Parallel()

	storage.TestStorage(t, newStorage)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	_, err := Factory(map[string]interface{}{}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "path not found")

	_, err = Factory(map[string]interface{}{"path": 1}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "path is not a string")

	_, err = Factory(map[string]interface{}{"path": t.TempDir(), "sync": "yes"}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "sync is not a bool")

	s, err := Factory(map[string]interface{}{"path": t.TempDir()}, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestBatch_Reuse(t *testing.T) {
	t.Parallel()

	s, err := Factory(map[string]interface{}{"path": t.TempDir(), "sync": true}, hclog.NewNullLogger())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, s.Close()) })

	first := types.StringToHash("0x01")
	second := types.StringToHash("0x02")

	batch := storage.NewBatchWriter(s)
	batch.PutHeadHash(first)
	require.NoError(t, batch.WriteBatch())

	head, ok := s.ReadHeadHash()
	require.True(t, ok)
	require.Equal(t, first, head)

	// a written batch is empty again and can stage the next block
	batch.PutHeadNumber(2)
	require.NoError(t, batch.WriteBatch())

	head, ok = s.ReadHeadHash()
	require.True(t, ok)
	require.Equal(t, first, head)

	n, ok := s.ReadHeadNumber()
	require.True(t, ok)
	require.Equal(t, uint64(2), n)

	batch.PutHeadHash(second)
	require.NoError(t, batch.WriteBatch())

	head, _ = s.ReadHeadHash()
	require.Equal(t, second, head)
}
