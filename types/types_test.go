package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEIP55(t *testing.T) {
	t.Parallel()

	cases := []struct {
		address  string
		expected string
	}{
		{
			"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
			"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		},
		{
			"0xb529594951753de833b00865",
			"0x0000000000000000B529594951753De833B00865",
		},
		{
			"0xeEd210D",
			"0x000000000000000000000000000000000eED210d",
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.address, func(t *testing.T) {
			t.Parallel()

			addr := StringToAddress(c.address)
			assert.Equal(t, c.expected, addr.String())
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		address string
		isValid bool
	}{
		{address: "0x123", isValid: false},
		{address: "FooBar", isValid: false},
		{address: "123FooBar", isValid: false},
		{address: "0x1234567890987654321012345678909876543210", isValid: true},
		{address: "0x0000000000000000000000000000000000000000", isValid: true},
		{address: "0x1000000000000000000000000000000000000000", isValid: true},
	}

	for _, c := range cases {
		_, err := IsValidAddress(c.address)
		if c.isValid {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
		}
	}
}

func TestAddress_UnmarshalText(t *testing.T) {
	t.Parallel()

	var addr Address

	require.NoError(t, addr.UnmarshalText([]byte("0x00000000000000000000000000000000000000b2")))
	assert.Equal(t, StringToAddress("0xb2"), addr)

	// short addresses are rejected rather than left padded
	require.Error(t, addr.UnmarshalText([]byte("0xb2")))
}

func TestHexBytes_Text(t *testing.T) {
	t.Parallel()

	raw, err := HexBytes{0x01, 0xff}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0x01ff", string(raw))

	var decoded HexBytes

	require.NoError(t, decoded.UnmarshalText(raw))
	assert.Equal(t, HexBytes{0x01, 0xff}, decoded)
}
