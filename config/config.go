package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

// Config defines the deployment of a host chain and its rollups
type Config struct {
	HostChainID     uint64   `json:"host_chain_id" yaml:"host_chain_id" hcl:"host_chain_id"`
	RollupChainIDs  []uint64 `json:"rollup_chain_ids" yaml:"rollup_chain_ids" hcl:"rollup_chain_ids"`
	ProtocolVersion string   `json:"protocol_version" yaml:"protocol_version" hcl:"protocol_version"`
	RoleDelay       uint64   `json:"role_delay" yaml:"role_delay" hcl:"role_delay"`
	BlockTime       uint64   `json:"block_time" yaml:"block_time" hcl:"block_time"`

	SequencerAdmin string   `json:"sequencer_admin" yaml:"sequencer_admin" hcl:"sequencer_admin"`
	TokenAdmin     string   `json:"token_admin" yaml:"token_admin" hcl:"token_admin"`
	GasAdmin       string   `json:"gas_admin" yaml:"gas_admin" hcl:"gas_admin"`
	Sequencers     []string `json:"sequencers" yaml:"sequencers" hcl:"sequencers"`
	AllowedTokens  []string `json:"allowed_tokens" yaml:"allowed_tokens" hcl:"allowed_tokens"`

	PerBlockGasLimit    uint64 `json:"per_block_gas_limit" yaml:"per_block_gas_limit" hcl:"per_block_gas_limit"`
	PerTransactGasLimit uint64 `json:"per_transact_gas_limit" yaml:"per_transact_gas_limit" hcl:"per_transact_gas_limit"`

	DataDir        string `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Storage        string `json:"storage" yaml:"storage" hcl:"storage"`
	LogLevel       string `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat  bool   `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
}

const (
	DefaultHostChainID   uint64 = 1
	DefaultRollupChainID uint64 = 17
	DefaultBlockTime     uint64 = 12

	DefaultPerBlockGasLimit    uint64 = 30_000_000
	DefaultPerTransactGasLimit uint64 = 5_000_000

	StorageMemory  = "memory"
	StorageLevelDB = "leveldb"
	StorageBoltDB  = "boltdb"
)

// DefaultConfig returns the default deployment configuration
func DefaultConfig() *Config {
	return &Config{
		HostChainID:         DefaultHostChainID,
		RollupChainIDs:      []uint64{DefaultRollupChainID},
		ProtocolVersion:     zenith.SequenceVersion.String(),
		BlockTime:           DefaultBlockTime,
		PerBlockGasLimit:    DefaultPerBlockGasLimit,
		PerTransactGasLimit: DefaultPerTransactGasLimit,
		Storage:             StorageMemory,
		LogLevel:            "INFO",
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Version returns the protocol version of the deployment
func (c *Config) Version() (zenith.ProtocolVersion, error) {
	return zenith.ParseProtocolVersion(c.ProtocolVersion)
}

// DefaultRollupChainID is the rollup entered by the overloads without a chain id
func (c *Config) DefaultRollupChainID() uint64 {
	if len(c.RollupChainIDs) == 0 {
		return DefaultRollupChainID
	}

	return c.RollupChainIDs[0]
}

// Validate reports every problem of the configuration at once
func (c *Config) Validate() error {
	var result error

	if c.HostChainID == 0 {
		result = multierror.Append(result, errors.New("host chain id must be set"))
	}

	if len(c.RollupChainIDs) == 0 {
		result = multierror.Append(result, errors.New("at least one rollup chain id is required"))
	}

	seen := map[uint64]struct{}{c.HostChainID: {}}

	for _, id := range c.RollupChainIDs {
		if _, ok := seen[id]; ok {
			result = multierror.Append(result, fmt.Errorf("chain id %d used twice", id))
		}

		seen[id] = struct{}{}
	}

	if _, err := c.Version(); err != nil {
		result = multierror.Append(result, err)
	}

	for name, addr := range map[string]string{
		"sequencer_admin": c.SequencerAdmin,
		"token_admin":     c.TokenAdmin,
		"gas_admin":       c.GasAdmin,
	} {
		if addr == "" {
			continue
		}

		if _, err := ParseAddress(addr); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	if _, err := ParseAddresses(c.Sequencers); err != nil {
		result = multierror.Append(result, fmt.Errorf("sequencers: %w", err))
	}

	if _, err := ParseAddresses(c.AllowedTokens); err != nil {
		result = multierror.Append(result, fmt.Errorf("allowed_tokens: %w", err))
	}

	if c.PerTransactGasLimit > c.PerBlockGasLimit {
		result = multierror.Append(result, fmt.Errorf("per transact gas limit %d exceeds per block gas limit %d",
			c.PerTransactGasLimit, c.PerBlockGasLimit))
	}

	switch c.Storage {
	case StorageMemory:
	case StorageLevelDB, StorageBoltDB:
		if c.DataDir == "" {
			result = multierror.Append(result, fmt.Errorf("data_dir is required by %s storage", c.Storage))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown storage %q", c.Storage))
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return result
}

// ParseAddress parses a 0x prefixed 20 bytes address
func ParseAddress(s string) (types.Address, error) {
	var addr types.Address
	if err := addr.UnmarshalText([]byte(s)); err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return addr, nil
}

// ParseAddresses parses a list of addresses
func ParseAddresses(list []string) ([]types.Address, error) {
	res := make([]types.Address, 0, len(list))

	for _, s := range list {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}

		res = append(res, addr)
	}

	return res, nil
}

// NewLogger creates the root logger of the configured level and format
func (c *Config) NewLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.LogLevel),
		JSONFormat: c.JSONLogFormat,
	})
}
