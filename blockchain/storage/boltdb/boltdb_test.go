package boltdb

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
)

func newStorage(t *testing.T) (storage.Storage, func()) {
	t.Helper()

	s, err := Factory(map[string]interface{}{"path": t.TempDir()}, hclog.NewNullLogger())
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
	}
}

func TestStorage(t *testing.T) {
	t.Parallel()

	storage.TestStorage(t, newStorage)
}
