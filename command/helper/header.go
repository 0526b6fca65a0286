package helper

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/config"
	"github.com/0xPolygon/polygon-zenith/contractsapi"
	"github.com/0xPolygon/polygon-zenith/crypto"
	"github.com/0xPolygon/polygon-zenith/helper/common"
	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const (
	hostChainIDFlag     = "host-chain-id"
	rollupChainIDFlag   = "rollup-chain-id"
	sequenceFlag        = "sequence"
	hostBlockFlag       = "host-block"
	confirmByFlag       = "confirm-by"
	gasLimitFlag        = "gas-limit"
	rewardAddressFlag   = "reward-address"
	blockDataFlag       = "block-data"
	blockDataHashFlag   = "block-data-hash"
	protocolVersionFlag = "protocol-version"
)

// HeaderParams are the flags describing a rollup block header and its block data
type HeaderParams struct {
	HostChainID     uint64
	RollupChainID   string
	Sequence        string
	HostBlock       string
	ConfirmBy       string
	GasLimit        string
	RewardAddress   string
	BlockData       string
	BlockDataHash   string
	ProtocolVersion string
}

// SetFlags registers the header flags on cmd
func (p *HeaderParams) SetFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&p.HostChainID, hostChainIDFlag, config.DefaultHostChainID,
		"the chain id of the host chain verifying the commitment")
	cmd.Flags().StringVar(&p.RollupChainID, rollupChainIDFlag, fmt.Sprint(config.DefaultRollupChainID),
		"the rollup chain id of the block")
	cmd.Flags().StringVar(&p.Sequence, sequenceFlag, "0",
		"the sequence number of the block")
	cmd.Flags().StringVar(&p.HostBlock, hostBlockFlag, "0",
		"the host block number the block is bound to")
	cmd.Flags().StringVar(&p.ConfirmBy, confirmByFlag, "0",
		"the timestamp after which the block may no longer be submitted")
	cmd.Flags().StringVar(&p.GasLimit, gasLimitFlag, fmt.Sprint(config.DefaultPerBlockGasLimit),
		"the gas limit of the block")
	cmd.Flags().StringVar(&p.RewardAddress, rewardAddressFlag, types.ZeroAddress.String(),
		"the address receiving the block rewards")
	cmd.Flags().StringVar(&p.BlockData, blockDataFlag, "",
		"the hex encoded block data")
	cmd.Flags().StringVar(&p.BlockDataHash, blockDataHashFlag, "",
		"the block data hash, keccak256 of the block data if omitted")
	cmd.Flags().StringVar(&p.ProtocolVersion, protocolVersionFlag, zenith.SequenceVersion.String(),
		"the protocol version, sequence or host-block")
}

// Header holds parsed header flags
type Header struct {
	HostChainID uint64
	Version     zenith.ProtocolVersion
	Header      *contractsapi.BlockHeader
	BlockData   []byte
}

// Commitment returns the hash the sequencer signs
func (h *Header) Commitment() types.Hash {
	return zenith.BlockCommitment(h.Version, h.HostChainID, h.Header, h.BlockData)
}

// Parse validates the flags and builds the header
func (p *HeaderParams) Parse() (*Header, error) {
	version, err := zenith.ParseProtocolVersion(p.ProtocolVersion)
	if err != nil {
		return nil, err
	}

	header := &contractsapi.BlockHeader{}

	for _, field := range []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{rollupChainIDFlag, p.RollupChainID, &header.RollupChainID},
		{sequenceFlag, p.Sequence, &header.Sequence},
		{hostBlockFlag, p.HostBlock, &header.HostBlockNumber},
		{confirmByFlag, p.ConfirmBy, &header.ConfirmBy},
		{gasLimitFlag, p.GasLimit, &header.GasLimit},
	} {
		raw := field.raw

		v, err := common.ParseUint256orHex(&raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", field.name, err)
		}

		*field.dst = v.ToBig()
	}

	if header.RewardAddress, err = config.ParseAddress(p.RewardAddress); err != nil {
		return nil, fmt.Errorf("--%s: %w", rewardAddressFlag, err)
	}

	data, err := hex.DecodeHex(p.BlockData)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", blockDataFlag, err)
	}

	if p.BlockDataHash == "" {
		header.BlockDataHash = crypto.Keccak256Hash(data)
	} else {
		raw, err := hex.DecodeHex(p.BlockDataHash)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", blockDataHashFlag, err)
		}

		if len(raw) != types.HashLength {
			return nil, fmt.Errorf("--%s: expected %d bytes, got %d", blockDataHashFlag, types.HashLength, len(raw))
		}

		header.BlockDataHash = types.BytesToHash(raw)
	}

	return &Header{
		HostChainID: p.HostChainID,
		Version:     version,
		Header:      header,
		BlockData:   data,
	}, nil
}

// KV returns the header fields formatted for FormatKV
func (h *Header) KV() []string {
	return []string{
		fmt.Sprintf("Protocol version|%s", h.Version),
		fmt.Sprintf("Host chain ID|%d", h.HostChainID),
		fmt.Sprintf("Rollup chain ID|%s", h.Header.RollupChainID),
		fmt.Sprintf("Sequence|%s", h.Header.Sequence),
		fmt.Sprintf("Host block|%s", h.Header.HostBlockNumber),
		fmt.Sprintf("Confirm by|%s", h.Header.ConfirmBy),
		fmt.Sprintf("Gas limit|%s", h.Header.GasLimit),
		fmt.Sprintf("Reward address|%s", h.Header.RewardAddress),
		fmt.Sprintf("Block data hash|%s", h.Header.BlockDataHash),
		fmt.Sprintf("Block data size|%d", len(h.BlockData)),
	}
}
