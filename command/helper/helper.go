package helper

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command"
	"github.com/0xPolygon/polygon-zenith/config"
)

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterEnvFileFlag registers the .env file secrets are loaded from
func RegisterEnvFileFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.EnvFileFlag,
		command.DefaultEnvFile,
		"the .env file secrets are read from, variables already set take precedence",
	)
}

// LoadEnv loads the .env file named by the --env-file flag
func LoadEnv(cmd *cobra.Command) error {
	file, err := cmd.Flags().GetString(command.EnvFileFlag)
	if err != nil {
		return err
	}

	return config.LoadEnv(file)
}

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// HandleSignals blocks until the process is interrupted, then runs closeFn.
// A second signal aborts the graceful shutdown.
func HandleSignals(closeFn func(), writeFn func(string)) int {
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-signalCh

	writeFn(fmt.Sprintf("\n[SIGNAL] Caught signal: %v\nGracefully shutting down...", sig))

	gracefulCh := make(chan struct{})

	go func() {
		if closeFn != nil {
			closeFn()
		}

		close(gracefulCh)
	}()

	select {
	case <-signalCh:
		return 1
	case <-gracefulCh:
		return 0
	}
}
