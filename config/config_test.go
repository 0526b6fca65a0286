package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const sequencerAddr = "0x00000000000000000000000000000000000000a1"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestReadConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
	"host_chain_id": 5,
	"rollup_chain_ids": [17, 18],
	"protocol_version": "host-block",
	"sequencers": ["` + sequencerAddr + `"],
	"per_block_gas_limit": 100
}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `host_chain_id: 5
rollup_chain_ids: [17, 18]
protocol_version: host-block
sequencers:
  - "` + sequencerAddr + `"
per_block_gas_limit: 100
`,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			config, err := ReadConfigFile(writeFile(t, c.file, c.content))
			require.NoError(t, err)

			assert.Equal(t, uint64(5), config.HostChainID)
			assert.Equal(t, []uint64{17, 18}, config.RollupChainIDs)
			assert.Equal(t, uint64(17), config.DefaultRollupChainID())
			assert.Equal(t, []string{sequencerAddr}, config.Sequencers)
			assert.Equal(t, uint64(100), config.PerBlockGasLimit)

			version, err := config.Version()
			require.NoError(t, err)
			assert.Equal(t, zenith.HostBlockVersion, version)

			// defaults are kept for missing keys
			assert.Equal(t, DefaultPerTransactGasLimit, config.PerTransactGasLimit)
			assert.Equal(t, StorageMemory, config.Storage)
		})
	}
}

func TestReadConfigFile_HCL(t *testing.T) {
	t.Parallel()

	config, err := ReadConfigFile(writeFile(t, "config.hcl", `
protocol_version = "host-block"
sequencers = ["`+sequencerAddr+`"]
storage = "leveldb"
data_dir = "/tmp/zenith"
json_log_format = true
`))
	require.NoError(t, err)

	assert.Equal(t, "host-block", config.ProtocolVersion)
	assert.Equal(t, []string{sequencerAddr}, config.Sequencers)
	assert.Equal(t, StorageLevelDB, config.Storage)
	assert.Equal(t, "/tmp/zenith", config.DataDir)
	assert.True(t, config.JSONLogFormat)
	assert.Equal(t, DefaultHostChainID, config.HostChainID)
}

func TestReadConfigFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadConfigFile(writeFile(t, "config.toml", ""))
	require.ErrorContains(t, err, "neither hcl, json, yaml nor yml")

	_, err = ReadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadConfigFile(writeFile(t, "config.json", "{"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	config := DefaultConfig()
	config.HostChainID = 17
	config.ProtocolVersion = "v9"
	config.SequencerAdmin = "0x1234"
	config.AllowedTokens = []string{"bad"}
	config.PerTransactGasLimit = config.PerBlockGasLimit + 1
	config.Storage = StorageLevelDB
	config.LogLevel = "loud"

	err := config.Validate()
	require.Error(t, err)

	var merr *multierror.Error

	require.ErrorAs(t, err, &merr)
	// duplicated chain id, version, admin, token, gas, data dir, log level
	assert.Len(t, merr.Errors, 7)
}

func TestParseAddresses(t *testing.T) {
	t.Parallel()

	addrs, err := ParseAddresses([]string{sequencerAddr})
	require.NoError(t, err)
	require.Equal(t, []types.Address{types.StringToAddress(sequencerAddr)}, addrs)

	_, err = ParseAddresses([]string{sequencerAddr, "0xzz"})
	require.Error(t, err)
}

//nolint:paralleltest
func TestSequencerKey(t *testing.T) {
	t.Setenv(SequencerKeyEnv, "")

	_, err := SequencerKey()
	require.ErrorIs(t, err, ErrNoSequencerKey)

	env := writeFile(t, ".env", SequencerKeyEnv+"=0x"+
		"4646464646464646464646464646464646464646464646464646464646464646\n")

	// variables already set win over the file
	require.NoError(t, LoadEnv(env, filepath.Join(t.TempDir(), "missing.env")))

	_, err = SequencerKey()
	require.ErrorIs(t, err, ErrNoSequencerKey)

	require.NoError(t, os.Unsetenv(SequencerKeyEnv))
	require.NoError(t, LoadEnv(env))

	key, err := SequencerKey()
	require.NoError(t, err)
	require.NotNil(t, key)

	t.Setenv(SequencerKeyEnv, "0x01")

	_, err = SequencerKey()
	require.ErrorContains(t, err, "invalid private key length")
}
