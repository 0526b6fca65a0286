package output

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command"
)

// OutputFormatter is the standardized interface all output formatters
// should use
type OutputFormatter interface {
	// getErrorOutput returns the CLI command error
	getErrorOutput() string

	// getCommandOutput returns the CLI command output
	getCommandOutput() string

	// SetError sets the encountered error
	SetError(err error)

	// SetCommandResult sets the result of the command execution
	SetCommandResult(result CommandResult)

	// WriteOutput writes the result / error output
	WriteOutput()
}

type CommandResult interface {
	GetOutput() string
}

func shouldOutputJSON(baseCmd *cobra.Command) bool {
	flag := baseCmd.Flag(command.JSONOutputFlag)

	return flag != nil && flag.Changed
}

func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if shouldOutputJSON(cmd) {
		return newJSONOutput(cmd)
	}

	return newCLIOutput(cmd)
}
