package keccak

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbracle/fastrlp"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

func legacyKeccak(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)

	return h.Sum(nil)
}

func TestKeccak256_Parts(t *testing.T) {
	t.Parallel()

	parts := [][]byte{[]byte("init4.sequencer"), {0x00, 0x07}, nil, []byte("block")}

	require.Equal(t, legacyKeccak(bytes.Join(parts, nil)), Keccak256(nil, parts...))
	require.Equal(t, legacyKeccak(nil), Keccak256(nil))

	// the digest is appended to dst
	prefix := []byte{0xff}
	out := Keccak256(prefix, []byte("zenith"))
	require.Len(t, out, 33)
	require.Equal(t, legacyKeccak([]byte("zenith")), out[1:])
}

func TestKeccak256Rlp(t *testing.T) {
	t.Parallel()

	ar := &fastrlp.Arena{}
	v := ar.NewArray()
	v.Set(ar.NewUint(17))
	v.Set(ar.NewBytes([]byte("header")))

	require.Equal(t, legacyKeccak(v.MarshalTo(nil)), Keccak256Rlp(nil, v))
}

func TestPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := NewPool()

	var g errgroup.Group

	for i := 0; i < 32; i++ {
		data := []byte(fmt.Sprintf("block %d", i))

		g.Go(func() error {
			for j := 0; j < 100; j++ {
				if got := pool.Sum(nil, data); !bytes.Equal(got, legacyKeccak(data)) {
					return fmt.Errorf("digest mismatch for %q", data)
				}
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}
