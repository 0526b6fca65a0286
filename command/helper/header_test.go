package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

func defaultHeaderParams() HeaderParams {
	return HeaderParams{
		HostChainID:     1,
		RollupChainID:   "17",
		Sequence:        "0x2",
		HostBlock:       "100",
		ConfirmBy:       "0",
		GasLimit:        "30000000",
		RewardAddress:   types.ZeroAddress.String(),
		BlockData:       "0x0102",
		ProtocolVersion: zenith.SequenceVersion.String(),
	}
}

func TestHeaderParams_Parse(t *testing.T) {
	t.Parallel()

	p := defaultHeaderParams()

	h, err := p.Parse()
	require.NoError(t, err)

	assert.Equal(t, uint64(17), h.Header.RollupChainID.Uint64())
	assert.Equal(t, uint64(2), h.Header.Sequence.Uint64())
	assert.Equal(t, uint64(100), h.Header.HostBlockNumber.Uint64())
	assert.Equal(t, []byte{1, 2}, h.BlockData)
	assert.Equal(t, crypto.Keccak256Hash([]byte{1, 2}), h.Header.BlockDataHash)
	assert.Equal(t, zenith.BlockCommitment(zenith.SequenceVersion, 1, h.Header, h.BlockData), h.Commitment())
}

func TestHeaderParams_ExplicitDataHash(t *testing.T) {
	t.Parallel()

	p := defaultHeaderParams()
	p.BlockDataHash = types.StringToHash("0x01").String()

	h, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, types.StringToHash("0x01"), h.Header.BlockDataHash)
}

func TestHeaderParams_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]func(p *HeaderParams){
		"sequence":         func(p *HeaderParams) { p.Sequence = "abc" },
		"reward-address":   func(p *HeaderParams) { p.RewardAddress = "0x01" },
		"block-data":       func(p *HeaderParams) { p.BlockData = "0xzz" },
		"block-data-hash":  func(p *HeaderParams) { p.BlockDataHash = "0x1234" },
		"protocol-version": func(p *HeaderParams) { p.ProtocolVersion = "v0" },
	}

	for name, mutate := range cases {
		mutate := mutate

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := defaultHeaderParams()
			mutate(&p)

			_, err := p.Parse()
			require.Error(t, err)
		})
	}
}

func TestFormatKV(t *testing.T) {
	t.Parallel()

	out := FormatKV([]string{"Key|Value", "Empty|"})
	assert.Contains(t, out, "Key")
	assert.Contains(t, out, "<none>")
}
