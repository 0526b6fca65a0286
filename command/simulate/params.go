package simulate

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command"
	"github.com/0xPolygon/polygon-zenith/config"
)

const (
	blocksFlag     = "blocks"
	dataDirFlag    = "data-dir"
	storageFlag    = "storage"
	prometheusFlag = "prometheus"
	workersFlag    = "workers"

	defaultBlocks  = 4
	defaultWorkers = 4
)

var errInvalidBlocks = errors.New("at least one block must be simulated")

var params = &simulateParams{}

type simulateParams struct {
	configPath string
	blocks     uint64
	workers    int

	rawConfig *config.Config
}

func (p *simulateParams) initConfig(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()

	if cmd.Flags().Changed(command.ConfigFlag) {
		fileConfig, err := config.ReadConfigFile(p.configPath)
		if err != nil {
			return err
		}

		cfg = fileConfig
	}

	// flags given explicitly override the config file
	flags := cmd.Flags()

	if flags.Changed(dataDirFlag) {
		cfg.DataDir = p.rawConfig.DataDir
	}

	if flags.Changed(storageFlag) {
		cfg.Storage = p.rawConfig.Storage
	}

	if flags.Changed(prometheusFlag) {
		cfg.PrometheusAddr = p.rawConfig.PrometheusAddr
	}

	if flags.Changed(command.LogLevelFlag) {
		cfg.LogLevel = p.rawConfig.LogLevel
	}

	p.rawConfig = cfg

	return nil
}

func (p *simulateParams) validateFlags() error {
	if p.blocks == 0 {
		return errInvalidBlocks
	}

	return p.rawConfig.Validate()
}
