package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command/commitment"
	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/command/recoversigner"
	"github.com/0xPolygon/polygon-zenith/command/sign"
	"github.com/0xPolygon/polygon-zenith/command/simulate"
	"github.com/0xPolygon/polygon-zenith/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:           "zenith",
			Short:         "Zenith settles rollup blocks on a host chain and verifies them off chain",
			SilenceUsage:  true,
			SilenceErrors: true,
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterEnvFileFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		commitment.GetCommand(),
		sign.GetCommand(),
		recoversigner.GetCommand(),
		simulate.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
