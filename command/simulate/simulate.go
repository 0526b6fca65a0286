package simulate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command"
	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/command/output"
	"github.com/0xPolygon/polygon-zenith/config"
	"github.com/0xPolygon/polygon-zenith/versioning"
)

// GetCommand returns the simulate command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "simulate",
		Short: "Runs a host chain with its rollups: blocks are built, signed, submitted " +
			"and verified off chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	defaultConfig := config.DefaultConfig()
	params.rawConfig = config.DefaultConfig()

	cmd.Flags().StringVar(
		&params.configPath,
		command.ConfigFlag,
		"",
		"the path to the deployment config. Supports .json, .yaml and .hcl",
	)

	cmd.Flags().Uint64Var(
		&params.blocks,
		blocksFlag,
		defaultBlocks,
		"the number of host blocks to build",
	)

	cmd.Flags().IntVar(
		&params.workers,
		workersFlag,
		defaultWorkers,
		"the number of host blocks whose commitments are checked concurrently",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.DataDir,
		dataDirFlag,
		defaultConfig.DataDir,
		"the directory chain data and verdicts are stored in",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Storage,
		storageFlag,
		defaultConfig.Storage,
		fmt.Sprintf("the chain storage, one of %s, %s or %s",
			config.StorageMemory, config.StorageLevelDB, config.StorageBoltDB),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.PrometheusAddr,
		prometheusFlag,
		defaultConfig.PrometheusAddr,
		"serve metrics on this address (host:port) and keep running after the simulation",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.LogLevel,
		command.LogLevelFlag,
		defaultConfig.LogLevel,
		"the log level for console output",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	if err := params.initConfig(cmd); err != nil {
		return err
	}

	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := output.InitializeOutputter(cmd)

	result, err := run(cmd)
	if err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}

	outputter.SetCommandResult(result)
	outputter.WriteOutput()

	if params.rawConfig.PrometheusAddr == "" {
		return
	}

	helper.HandleSignals(nil, func(s string) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), s)
	})
}

func run(cmd *cobra.Command) (*SimulateResult, error) {
	cfg := params.rawConfig

	if err := helper.LoadEnv(cmd); err != nil {
		return nil, err
	}

	logger := cfg.NewLogger("zenith")
	logger.Info("starting simulation", "build", versioning.Current())

	if cfg.PrometheusAddr != "" {
		if err := setupTelemetry(); err != nil {
			return nil, err
		}

		startMetricsServer(logger, cfg.PrometheusAddr)
	}

	sim, err := newSimulation(logger, cfg, params.workers)
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	return sim.Run(cmd.Context(), params.blocks)
}
