package keccak

import (
	"sync"

	"github.com/umbracle/fastrlp"
)

// DefaultKeccakPool serves the header, transaction and commitment hashes
var DefaultKeccakPool = NewPool()

// Pool recycles keccak states between hashes
type Pool struct {
	pool sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() interface{} { return NewKeccak256() },
		},
	}
}

func (p *Pool) get() *Keccak {
	return p.pool.Get().(*Keccak) //nolint:forcetypeassert
}

func (p *Pool) put(k *Keccak) {
	k.Reset()
	p.pool.Put(k)
}

// Sum appends the keccak-256 of the concatenated parts to dst
func (p *Pool) Sum(dst []byte, parts ...[]byte) []byte {
	h := p.get()
	defer p.put(h)

	for _, part := range parts {
		h.Write(part) //nolint:errcheck
	}

	return h.Sum(dst)
}

// SumRlp appends the keccak-256 of the RLP encoding of v to dst
func (p *Pool) SumRlp(dst []byte, v *fastrlp.Value) []byte {
	h := p.get()
	defer p.put(h)

	return h.WriteRlp(dst, v)
}

// Keccak256 appends the keccak-256 of the concatenated parts to dst
func Keccak256(dst []byte, parts ...[]byte) []byte {
	return DefaultKeccakPool.Sum(dst, parts...)
}

// Keccak256Rlp appends the keccak-256 of the RLP encoding of v to dst
func Keccak256Rlp(dst []byte, v *fastrlp.Value) []byte {
	return DefaultKeccakPool.SumRlp(dst, v)
}
