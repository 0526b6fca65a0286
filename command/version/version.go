package version

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command/output"
	"github.com/0xPolygon/polygon-zenith/versioning"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the current zenith version",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := output.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(newVersionResult(versioning.Current()))
}
