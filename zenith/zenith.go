package zenith

import (
	"errors"
	"math/big"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/roles"
	"github.com/0xPolygon/polygon-zenith/state"
	"github.com/0xPolygon/polygon-zenith/state/runtime"
	"github.com/0xPolygon/polygon-zenith/types"
)

const signerCacheSize = 1024

var (
	nextSequenceSlot         = types.BytesToHash([]byte{0})
	lastSubmittedAtBlockSlot = types.BytesToHash([]byte{1})
	sequencersSlot           = types.BytesToHash([]byte{2})
	rolesSlot                = types.BytesToHash([]byte{3})
)

// Zenith is the sequencer block commitment contract of the host chain. It accepts
// at most one rollup block per rollup chain and host block, each attested by a
// permissioned sequencer.
type Zenith struct {
	logger  hclog.Logger
	Address types.Address
	Version ProtocolVersion

	roles   *roles.Manager
	signers *lru.Cache
}

// NewZenith creates the contract deployed at addr
func NewZenith(logger hclog.Logger, addr types.Address, version ProtocolVersion, roleDelay uint64) (*Zenith, error) {
	signers, err := lru.New(signerCacheSize)
	if err != nil {
		return nil, err
	}

	return &Zenith{
		logger:  logger.Named("zenith"),
		Address: addr,
		Version: version,
		roles: roles.NewManager(rolesSlot, roleDelay).
			WithGate(roles.SequencerAdmin, contractsapi.OnlySequencerAdminError),
		signers: signers,
	}, nil
}

func (z *Zenith) Name() string {
	return "zenith"
}

// Init sets the sequencer admin and the initial sequencer set
func (z *Zenith) Init(host runtime.Host, sequencerAdmin types.Address, sequencers []types.Address) error {
	z.roles.Grant(host, z.Address, roles.SequencerAdmin, sequencerAdmin)

	for _, seq := range sequencers {
		if err := z.setSequencer(host, seq, true); err != nil {
			return err
		}
	}

	return nil
}

func chainKey(rollupChainID *uint256.Int) types.Hash {
	return rollupChainID.Bytes32()
}

// NextSequence returns the sequence number the next block of rollupChainID must carry
func (z *Zenith) NextSequence(host runtime.Host, rollupChainID *uint256.Int) *uint256.Int {
	return runtime.GetUint(host, z.Address, state.MappingSlot(chainKey(rollupChainID), nextSequenceSlot))
}

// LastSubmittedAtBlock returns the host block of the last accepted block of rollupChainID
func (z *Zenith) LastSubmittedAtBlock(host runtime.Host, rollupChainID *uint256.Int) *uint256.Int {
	return runtime.GetUint(host, z.Address, state.MappingSlot(chainKey(rollupChainID), lastSubmittedAtBlockSlot))
}

// IsSequencer reports whether addr may sign block commitments
func (z *Zenith) IsSequencer(host runtime.Host, addr types.Address) bool {
	return runtime.GetBool(host, z.Address, state.MappingSlot(state.AddressKey(addr), sequencersSlot))
}

// setSequencer updates the membership of addr. Unchanged memberships emit nothing.
func (z *Zenith) setSequencer(host runtime.Host, addr types.Address, permissioned bool) error {
	if z.IsSequencer(host, addr) == permissioned {
		return nil
	}

	runtime.SetBool(host, z.Address, state.MappingSlot(state.AddressKey(addr), sequencersSlot), permissioned)

	z.logger.Debug("sequencer set", "sequencer", addr, "permissioned", permissioned)

	return runtime.Emit(host, z.Address, &contractsapi.SequencerSetEvent{
		Sequencer:    addr,
		Permissioned: permissioned,
	})
}

// recoverSigner memoises signer recovery per commitment and signature
func (z *Zenith) recoverSigner(commitment types.Hash, sig *Signature) types.Address {
	key := string(commitment.Bytes()) + string(sig.Bytes())

	if signer, ok := z.signers.Get(key); ok {
		return signer.(types.Address) //nolint:forcetypeassert
	}

	signer := RecoverSigner(commitment, sig)
	z.signers.Add(key, signer)

	return signer
}

// submission is a block header together with the source of its block data
type submission struct {
	header   *contractsapi.BlockHeader
	sig      *Signature
	location DataLocation
	// data resolves the block data, it runs after the freshness checks
	data func() ([]byte, error)
	// sideEvent is emitted after BlockSubmitted
	sideEvent func(data []byte) contractsapi.EventAbi
}

// checkFreshness enforces the submission window of the protocol version
func (z *Zenith) checkFreshness(host runtime.Host, header *contractsapi.BlockHeader) error {
	ctx := host.GetTxContext()

	switch z.Version {
	case HostBlockVersion:
		if header.HostBlockNumber == nil || !header.HostBlockNumber.IsUint64() ||
			header.HostBlockNumber.Uint64() != ctx.Number {
			return contractsapi.IncorrectHostBlockError.Revert()
		}

	default:
		expected := z.NextSequence(host, runtime.ToUint256(header.RollupChainID))
		if !runtime.ToUint256(header.Sequence).Eq(expected) {
			return contractsapi.BadSequenceError.Revert(expected.ToBig())
		}

		if new(big.Int).SetUint64(ctx.Timestamp).Cmp(bigOrZero(header.ConfirmBy)) > 0 {
			return contractsapi.BlockExpiredError.Revert()
		}
	}

	return nil
}

func (z *Zenith) submitBlock(host runtime.Host, s *submission) error {
	ctx := host.GetTxContext()
	header := s.header
	chainID := runtime.ToUint256(header.RollupChainID)

	if err := z.checkFreshness(host, header); err != nil {
		return err
	}

	data, err := s.data()
	if err != nil {
		return err
	}

	commitment := BlockCommitment(z.Version, ctx.ChainID, header, data)

	signer := z.recoverSigner(commitment, s.sig)
	if !z.IsSequencer(host, signer) {
		return contractsapi.BadSignatureError.Revert(signer)
	}

	lastSlot := state.MappingSlot(chainKey(chainID), lastSubmittedAtBlockSlot)
	if runtime.GetUint(host, z.Address, lastSlot).Eq(uint256.NewInt(ctx.Number)) {
		return contractsapi.OneRollupBlockPerHostBlockError.Revert()
	}

	runtime.SetUint(host, z.Address, lastSlot, uint256.NewInt(ctx.Number))

	next := z.NextSequence(host, chainID)
	if z.Version == SequenceVersion {
		next = new(uint256.Int).AddUint64(next, 1)
		runtime.SetUint(host, z.Address, state.MappingSlot(chainKey(chainID), nextSequenceSlot), next)
	}

	event := z.submittedEvent(ctx, signer, header, s.location)
	if err := runtime.Emit(host, z.Address, event); err != nil {
		return err
	}

	if err := runtime.Emit(host, z.Address, s.sideEvent(data)); err != nil {
		return err
	}

	blockSubmittedMetrics(chainID, next)

	z.logger.Debug("block submitted",
		"rollup chain", chainID.Dec(),
		"sequence", event.Sequence,
		"sequencer", signer,
		"commitment", commitment,
		"header", HeaderHash(header),
	)

	return nil
}

// submittedEvent publishes the header under the signer's name. Fields the
// commitment of the version does not bind come from the host block instead of
// the calldata.
func (z *Zenith) submittedEvent(ctx runtime.TxContext, signer types.Address,
	header *contractsapi.BlockHeader, location DataLocation) *contractsapi.BlockSubmittedEvent {
	event := &contractsapi.BlockSubmittedEvent{
		Sequencer:         signer,
		RollupChainID:     bigOrZero(header.RollupChainID),
		BlockDataLocation: uint8(location),
		GasLimit:          bigOrZero(header.GasLimit),
		HostBlockNumber:   new(big.Int).SetUint64(ctx.Number),
		RewardAddress:     header.RewardAddress,
		BlockDataHash:     header.BlockDataHash,
	}

	if z.Version == HostBlockVersion {
		event.Sequence = new(big.Int)
		event.ConfirmBy = new(big.Int)
	} else {
		event.Sequence = bigOrZero(header.Sequence)
		event.ConfirmBy = bigOrZero(header.ConfirmBy)
	}

	return event
}

// blobData concatenates the blob versioned hashes of the transaction at indices
func blobData(host runtime.Host, indices []*big.Int) ([]byte, []types.Hash, error) {
	blobs := host.GetTxContext().BlobHashes

	data := make([]byte, 0, len(indices)*types.HashLength)
	hashes := make([]types.Hash, 0, len(indices))

	for _, idx := range indices {
		if idx == nil || !idx.IsUint64() || idx.Uint64() >= uint64(len(blobs)) {
			return nil, nil, contractsapi.BadBlobIndexError.Revert(bigOrZero(idx))
		}

		hash := blobs[idx.Uint64()]
		data = append(data, hash.Bytes()...)
		hashes = append(hashes, hash)
	}

	return data, hashes, nil
}

// Run implements the runtime.Runtime interface
func (z *Zenith) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	if res, ok := z.roles.Run(c, host); ok {
		return res
	}

	if res := runtime.NotPayable(c); res != nil {
		return res
	}

	input := c.Input

	switch {
	case contractsapi.MatchSelector(contractsapi.SubmitBlockMethod, input):
		var fn contractsapi.SubmitBlockFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return z.rejected(host, z.submitBlock(host, &submission{
			header:   &fn.Header,
			sig:      &Signature{V: fn.V, R: fn.R, S: fn.S},
			location: CalldataLocation,
			data: func() ([]byte, error) {
				return fn.BlockData, nil
			},
			sideEvent: func(data []byte) contractsapi.EventAbi {
				return &contractsapi.BlockDataEvent{RollupChainID: bigOrZero(fn.Header.RollupChainID), BlockData: data}
			},
		}))

	case contractsapi.MatchSelector(contractsapi.SubmitBlockBlobsMethod, input):
		var fn contractsapi.SubmitBlockBlobsFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		var hashes []types.Hash

		return z.rejected(host, z.submitBlock(host, &submission{
			header:   &fn.Header,
			sig:      &Signature{V: fn.V, R: fn.R, S: fn.S},
			location: BlobLocation,
			data: func() (data []byte, err error) {
				data, hashes, err = blobData(host, fn.BlobIndices)

				return data, err
			},
			sideEvent: func([]byte) contractsapi.EventAbi {
				return &contractsapi.BlockBlobsEvent{
					RollupChainID: bigOrZero(fn.Header.RollupChainID),
					BlobIndices:   fn.BlobIndices,
					BlobHashes:    hashes,
				}
			},
		}))

	case contractsapi.MatchSelector(contractsapi.BlockCommitmentMethod, input):
		var fn contractsapi.BlockCommitmentFn
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		commitment := BlockCommitment(z.Version, host.GetTxContext().ChainID, &fn.Header, fn.BlockData)

		return runtime.Returns(contractsapi.BlockCommitmentMethod, commitment)

	case contractsapi.MatchSelector(contractsapi.AddSequencerMethod, input),
		contractsapi.MatchSelector(contractsapi.RemoveSequencerMethod, input):
		add := contractsapi.MatchSelector(contractsapi.AddSequencerMethod, input)

		fn := contractsapi.SequencerFn{Method: contractsapi.RemoveSequencerMethod}
		if add {
			fn.Method = contractsapi.AddSequencerMethod
		}

		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		if err := z.roles.OnlyHolder(host, c, roles.SequencerAdmin); err != nil {
			return runtime.Failure(err)
		}

		if err := z.setSequencer(host, fn.Sequencer, add); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Success(nil)

	case contractsapi.MatchSelector(contractsapi.IsSequencerMethod, input):
		fn := contractsapi.SequencerFn{Method: contractsapi.IsSequencerMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.IsSequencerMethod, z.IsSequencer(host, fn.Sequencer))

	case contractsapi.MatchSelector(contractsapi.NextSequenceMethod, input):
		fn := contractsapi.ChainIDFn{Method: contractsapi.NextSequenceMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.NextSequenceMethod,
			z.NextSequence(host, runtime.ToUint256(fn.RollupChainID)).ToBig())

	case contractsapi.MatchSelector(contractsapi.LastSubmittedAtBlockMethod, input):
		fn := contractsapi.ChainIDFn{Method: contractsapi.LastSubmittedAtBlockMethod}
		if err := fn.DecodeAbi(input); err != nil {
			return runtime.Failure(err)
		}

		return runtime.Returns(contractsapi.LastSubmittedAtBlockMethod,
			z.LastSubmittedAtBlock(host, runtime.ToUint256(fn.RollupChainID)).ToBig())
	}

	return runtime.Failure(runtime.ErrUnknownMethod)
}

// rejected turns the outcome of a submission into a result, counting rejections
func (z *Zenith) rejected(host runtime.Host, err error) *runtime.ExecutionResult {
	if err == nil {
		return runtime.Success(nil)
	}

	reason := "unknown"

	var revertErr *contractsapi.RevertError
	if errors.As(err, &revertErr) {
		reason = revertErr.Definition().Name()
	}

	rejectedMetrics(reason)
	z.logger.Debug("block rejected", "host block", host.GetTxContext().Number, "err", err)

	return runtime.Failure(err)
}
