package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeUint64ToBytes(t *testing.T) {
	t.Parallel()

	cases := []uint64{0, 1, 255, 1 << 32, ^uint64(0)}

	for _, c := range cases {
		buf := EncodeUint64ToBytes(c)
		require.Len(t, buf, 8)
		require.Equal(t, c, EncodeBytesToUint64(buf))
	}

	// big endian keys keep bolt cursors ordered
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, EncodeUint64ToBytes(256))
}

func TestSetupDataDir(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, SetupDataDir(root, []string{"blockchain", "verifier"}))

	for _, sub := range []string{"blockchain", "verifier"} {
		info, err := os.Stat(filepath.Join(root, sub))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	// idempotent
	require.NoError(t, SetupDataDir(root, []string{"blockchain"}))
}

func TestParseUint256orHex(t *testing.T) {
	t.Parallel()

	dec := "1000"
	v, err := ParseUint256orHex(&dec)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v.Uint64())

	hexStr := "0x3e8"
	v, err = ParseUint256orHex(&hexStr)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v.Uint64())

	tooBig := "0x1" + "0000000000000000000000000000000000000000000000000000000000000000"
	_, err = ParseUint256orHex(&tooBig)
	require.Error(t, err)

	neg := "-1"
	_, err = ParseUint256orHex(&neg)
	require.Error(t, err)

	v, err = ParseUint256orHex(nil)
	require.NoError(t, err)
	require.True(t, v.IsZero())
}
