package hex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHex_OddLength(t *testing.T) {
	t.Parallel()

	buf, err := DecodeHex("0xabc")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0xbc}, buf)

	_, err = DecodeHex("0xzz")
	require.Error(t, err)

	require.Panics(t, func() { MustDecodeHex("nothex") })
}
