package verifier

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/genesis"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

var (
	errSignerMismatch   = errors.New("recovered signer is not the reported sequencer")
	errDataHashMismatch = errors.New("block data does not hash to blockDataHash")
	errMissingData      = errors.New("block data event missing")
)

// hostBlock is a host block with the submissions it carries, decoded ahead of
// rollup derivation
type hostBlock struct {
	block    *types.Block
	receipts []*types.Receipt

	// submissions by rollup chain id
	submissions map[uint64]*submitted
}

// submitted is a checked submission together with the transactions of its block
type submitted struct {
	*Submission

	header *contractsapi.BlockHeader
	txs    []*types.Transaction
}

// checkCommitments recomputes the commitment of every block submitted in the
// host block and checks it against the sequencer the host accepted
func checkCommitments(version zenith.ProtocolVersion, hostChainID uint64, block *types.Block, receipts []*types.Receipt) (*hostBlock, error) {
	if len(block.Transactions) != len(receipts) {
		return nil, fmt.Errorf("block %d has %d transactions and %d receipts",
			block.Number(), len(block.Transactions), len(receipts))
	}

	hb := &hostBlock{
		block:       block,
		receipts:    receipts,
		submissions: map[uint64]*submitted{},
	}

	for i, receipt := range receipts {
		tx := block.Transactions[i]
		if receipt.Status != types.ReceiptSuccess || tx.To != genesis.ZenithAddr {
			continue
		}

		s, err := checkSubmission(version, hostChainID, tx, receipt)
		if err != nil {
			return nil, fmt.Errorf("tx %s: %w", receipt.TxHash, err)
		}

		if s == nil {
			continue
		}

		chainID := s.header.RollupChainID.Uint64()
		if _, ok := hb.submissions[chainID]; ok {
			return nil, fmt.Errorf("tx %s: second block for rollup %d", receipt.TxHash, chainID)
		}

		hb.submissions[chainID] = s
	}

	return hb, nil
}

// checkSubmission returns nil when the receipt carries no BlockSubmitted event
// for a rollup with a 64 bit chain id.
// An error means the host block itself is inconsistent, a bad commitment is
// reported through the submission.
func checkSubmission(version zenith.ProtocolVersion, hostChainID uint64, tx *types.Transaction, receipt *types.Receipt) (*submitted, error) {
	var (
		event      contractsapi.BlockSubmittedEvent
		dataEvent  contractsapi.BlockDataEvent
		blobsEvent contractsapi.BlockBlobsEvent

		found, hasData, hasBlobs bool
	)

	for _, log := range receipt.Logs {
		if log.Address != genesis.ZenithAddr {
			continue
		}

		if ok, err := event.ParseLog(log); err != nil {
			return nil, err
		} else if ok {
			found = true

			continue
		}

		if ok, err := dataEvent.ParseLog(log); err != nil {
			return nil, err
		} else if ok {
			hasData = true

			continue
		}

		ok, err := blobsEvent.ParseLog(log)
		if err != nil {
			return nil, err
		}

		hasBlobs = hasBlobs || ok
	}

	// no rollup derived here can carry a chain id beyond 64 bits
	if !found || !event.RollupChainID.IsUint64() {
		return nil, nil
	}

	sig, err := submissionSignature(tx.Input)
	if err != nil {
		return nil, err
	}

	header := event.Header()
	location := zenith.DataLocation(event.BlockDataLocation)

	s := &submitted{
		Submission: &Submission{
			TxHash:        receipt.TxHash,
			Sequencer:     event.Sequencer,
			Sequence:      event.Sequence,
			Location:      location,
			BlockDataHash: event.BlockDataHash,
		},
		header: header,
	}

	var data []byte

	switch {
	case location == zenith.CalldataLocation && hasData:
		data = dataEvent.BlockData
	case location == zenith.BlobLocation && hasBlobs:
		for _, hash := range blobsEvent.BlobHashes {
			data = append(data, hash.Bytes()...)
		}
	default:
		s.Err = errMissingData.Error()

		return s, nil
	}

	s.Commitment = zenith.BlockCommitment(version, hostChainID, header, data)
	s.Signer = zenith.RecoverSigner(s.Commitment, sig)

	if s.Signer != event.Sequencer {
		s.Err = errSignerMismatch.Error()

		return s, nil
	}

	// blob contents never reach the host, only calldata blocks carry transactions
	if location != zenith.CalldataLocation {
		return s, nil
	}

	if !bytes.Equal(crypto.Keccak256(data), event.BlockDataHash.Bytes()) {
		s.Err = errDataHashMismatch.Error()

		return s, nil
	}

	if len(data) > 0 {
		body := new(types.Body)
		if err := body.UnmarshalRLP(data); err != nil {
			s.Err = fmt.Sprintf("undecodable block data: %v", err)

			return s, nil
		}

		s.txs = body.Transactions
	}

	return s, nil
}

// submissionSignature decodes the sequencer signature from submitBlock or
// submitBlockBlobs calldata
func submissionSignature(input []byte) (*zenith.Signature, error) {
	switch {
	case contractsapi.MatchSelector(contractsapi.SubmitBlockMethod, input):
		var fn contractsapi.SubmitBlockFn
		if err := fn.DecodeAbi(input); err != nil {
			return nil, err
		}

		return &zenith.Signature{V: fn.V, R: fn.R, S: fn.S}, nil

	case contractsapi.MatchSelector(contractsapi.SubmitBlockBlobsMethod, input):
		var fn contractsapi.SubmitBlockBlobsFn
		if err := fn.DecodeAbi(input); err != nil {
			return nil, err
		}

		return &zenith.Signature{V: fn.V, R: fn.R, S: fn.S}, nil

	default:
		return nil, errors.New("submission is not a submitBlock call")
	}
}
