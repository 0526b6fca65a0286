package zenith

import (
	"fmt"
	"math/big"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/helper/keccak"
	"github.com/0xPolygon/polygon-zenith/types"
)

// ProtocolVersion selects how a submission proves it is fresh
type ProtocolVersion uint8

const (
	// SequenceVersion requires the next sequence number of the rollup chain
	// and a confirm-by deadline that has not passed
	SequenceVersion ProtocolVersion = iota
	// HostBlockVersion requires the header to name the current host block
	HostBlockVersion
)

const (
	sequenceVersionTag  = "init4.sequencer.v0"
	hostBlockVersionTag = "init4.sequencer.v1"
)

func (v ProtocolVersion) String() string {
	switch v {
	case SequenceVersion:
		return "sequence"
	case HostBlockVersion:
		return "host-block"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// Tag returns the prefix of the commitment preimage
func (v ProtocolVersion) Tag() string {
	if v == HostBlockVersion {
		return hostBlockVersionTag
	}

	return sequenceVersionTag
}

// ParseProtocolVersion parses the textual form of a protocol version
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	switch s {
	case "", "sequence":
		return SequenceVersion, nil
	case "host-block":
		return HostBlockVersion, nil
	default:
		return 0, fmt.Errorf("unknown protocol version %q", s)
	}
}

// DataLocation tells where the block data of a submission was sourced from
type DataLocation uint8

const (
	CalldataLocation DataLocation = iota
	BlobLocation
)

// BlockCommitment returns the hash a sequencer signs for header and its block data.
// The preimage is tightly packed:
//
//	tag | hostChainId | rollupChainId | sequence | gasLimit | confirmBy | rewardAddress | blockDataHash | len(data) | data
//
// HostBlockVersion replaces the sequence and confirmBy words with hostBlockNumber.
func BlockCommitment(
	version ProtocolVersion,
	hostChainID uint64,
	header *contractsapi.BlockHeader,
	blockData []byte,
) types.Hash {
	p := newPacker(version.Tag())

	p.word(new(big.Int).SetUint64(hostChainID))
	p.word(header.RollupChainID)

	if version == HostBlockVersion {
		p.word(header.HostBlockNumber)
		p.word(header.GasLimit)
	} else {
		p.word(header.Sequence)
		p.word(header.GasLimit)
		p.word(header.ConfirmBy)
	}

	p.bytes(header.RewardAddress.Bytes())
	p.bytes(header.BlockDataHash.Bytes())
	p.word(big.NewInt(int64(len(blockData))))
	p.bytes(blockData)

	return crypto.Keccak256Hash(p.buf)
}

// packer builds a tightly packed hash preimage
type packer struct {
	buf []byte
}

func newPacker(tag string) *packer {
	return &packer{buf: []byte(tag)}
}

// word appends v as a 32 byte big endian word
func (p *packer) word(v *big.Int) {
	if v == nil {
		v = new(big.Int)
	}

	p.buf = append(p.buf, types.BigToHash(v).Bytes()...)
}

func (p *packer) bytes(b []byte) {
	p.buf = append(p.buf, b...)
}

var headerArenaPool fastrlp.ArenaPool

// HeaderHash is the content identity of a header, the keccak256 of its RLP encoding
func HeaderHash(header *contractsapi.BlockHeader) (hash types.Hash) {
	ar := headerArenaPool.Get()

	vv := ar.NewArray()
	vv.Set(ar.NewBigInt(bigOrZero(header.RollupChainID)))
	vv.Set(ar.NewBigInt(bigOrZero(header.Sequence)))
	vv.Set(ar.NewBigInt(bigOrZero(header.HostBlockNumber)))
	vv.Set(ar.NewBigInt(bigOrZero(header.ConfirmBy)))
	vv.Set(ar.NewBigInt(bigOrZero(header.GasLimit)))
	vv.Set(ar.NewCopyBytes(header.RewardAddress.Bytes()))
	vv.Set(ar.NewCopyBytes(header.BlockDataHash.Bytes()))

	keccak.Keccak256Rlp(hash[:0], vv)
	headerArenaPool.Put(ar)

	return
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
