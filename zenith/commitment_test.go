package zenith

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/helper/tests"
	"github.com/0xPolygon/polygon-zenith/types"
)

func testHeader() *contractsapi.BlockHeader {
	return &contractsapi.BlockHeader{
		RollupChainID:   big.NewInt(7),
		Sequence:        big.NewInt(3),
		HostBlockNumber: big.NewInt(100),
		ConfirmBy:       big.NewInt(1_700_000_000),
		GasLimit:        big.NewInt(30_000_000),
		RewardAddress:   types.StringToAddress("0x00000000000000000000000000000000000000aa"),
		BlockDataHash:   types.StringToHash("0xbb"),
	}
}

func word(v uint64) []byte {
	return types.BigToHash(new(big.Int).SetUint64(v)).Bytes()
}

func TestBlockCommitment_Layout(t *testing.T) {
	t.Parallel()

	header := testHeader()
	data := hex.MustDecodeHex("0xc0ffee")

	cases := []struct {
		version  ProtocolVersion
		preimage [][]byte
	}{
		{
			SequenceVersion,
			[][]byte{
				[]byte("init4.sequencer.v0"),
				word(1), word(7), word(3), word(30_000_000), word(1_700_000_000),
				header.RewardAddress.Bytes(), header.BlockDataHash.Bytes(),
				word(3), data,
			},
		},
		{
			HostBlockVersion,
			[][]byte{
				[]byte("init4.sequencer.v1"),
				word(1), word(7), word(100), word(30_000_000),
				header.RewardAddress.Bytes(), header.BlockDataHash.Bytes(),
				word(3), data,
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.version.String(), func(t *testing.T) {
			t.Parallel()

			expected := crypto.Keccak256Hash(bytes.Join(c.preimage, nil))
			require.Equal(t, expected, BlockCommitment(c.version, 1, header, data))
		})
	}
}

func TestBlockCommitment_VersionFields(t *testing.T) {
	t.Parallel()

	header := testHeader()
	base := BlockCommitment(HostBlockVersion, 1, header, nil)

	// the host block version ignores sequence and deadline
	changed := header.Copy()
	changed.Sequence = big.NewInt(4)
	changed.ConfirmBy = big.NewInt(1)
	assert.Equal(t, base, BlockCommitment(HostBlockVersion, 1, changed, nil))
	assert.NotEqual(t, BlockCommitment(SequenceVersion, 1, header, nil), BlockCommitment(SequenceVersion, 1, changed, nil))

	// and the sequence version ignores the host block
	changed = header.Copy()
	changed.HostBlockNumber = big.NewInt(101)
	assert.Equal(t, BlockCommitment(SequenceVersion, 1, header, nil), BlockCommitment(SequenceVersion, 1, changed, nil))
	assert.NotEqual(t, base, BlockCommitment(HostBlockVersion, 1, changed, nil))

	assert.NotEqual(t, base, BlockCommitment(HostBlockVersion, 2, header, nil))
}

func TestHeaderHash(t *testing.T) {
	t.Parallel()

	header := testHeader()
	hash := HeaderHash(header)

	require.Equal(t, hash, HeaderHash(header.Copy()))

	changed := header.Copy()
	changed.HostBlockNumber = big.NewInt(101)
	require.NotEqual(t, hash, HeaderHash(changed))

	// nil numbers hash as zero
	require.Equal(t, HeaderHash(&contractsapi.BlockHeader{}), HeaderHash(&contractsapi.BlockHeader{
		RollupChainID:   new(big.Int),
		Sequence:        new(big.Int),
		HostBlockNumber: new(big.Int),
		ConfirmBy:       new(big.Int),
		GasLimit:        new(big.Int),
	}))
}

func TestParseProtocolVersion(t *testing.T) {
	t.Parallel()

	for _, v := range []ProtocolVersion{SequenceVersion, HostBlockVersion} {
		parsed, err := ParseProtocolVersion(v.String())
		require.NoError(t, err)
		require.Equal(t, v, parsed)
	}

	_, err := ParseProtocolVersion("v2")
	require.Error(t, err)
}

func TestSignature_Bytes(t *testing.T) {
	t.Parallel()

	key, addr := tests.GenerateKeyAndAddr(t)
	signer := NewSigner(key, 1, SequenceVersion)
	require.Equal(t, addr, signer.Address())

	commitment := BlockCommitment(SequenceVersion, 1, testHeader(), nil)

	sig, err := signer.SignCommitment(commitment)
	require.NoError(t, err)
	require.Contains(t, []uint8{27, 28}, sig.V)

	raw := sig.Bytes()
	require.Len(t, raw, crypto.ECDSASignatureLength)

	recovered, err := crypto.Ecrecover(commitment.Bytes(), crypto.JoinSignature(raw[64], sig.R, sig.S))
	require.NoError(t, err)
	require.Equal(t, addr, recovered)
}

func TestParseSignature(t *testing.T) {
	t.Parallel()

	key, addr := tests.GenerateKeyAndAddr(t)
	signer := NewSigner(key, 1, SequenceVersion)
	commitment := BlockCommitment(SequenceVersion, 1, testHeader(), nil)

	sig, err := signer.SignCommitment(commitment)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		parsed, err := ParseSignature(sig.Bytes())
		require.NoError(t, err)
		require.Equal(t, sig, parsed)
		require.Equal(t, addr, RecoverSigner(commitment, parsed))
	})

	t.Run("raw recovery id", func(t *testing.T) {
		t.Parallel()

		raw := sig.Bytes()
		raw[64] -= 27

		parsed, err := ParseSignature(raw)
		require.NoError(t, err)
		require.Equal(t, sig.V, parsed.V)
		require.Equal(t, addr, RecoverSigner(commitment, parsed))
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Parallel()

		_, err := ParseSignature(sig.Bytes()[:64])
		require.ErrorIs(t, err, ErrSignatureLength)
	})
}
