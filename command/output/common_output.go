package output

import (
	"io"

	"github.com/spf13/cobra"
)

type commonOutputFormatter struct {
	stdout        io.Writer
	stderr        io.Writer
	errorOutput   error
	commandOutput CommandResult
}

func newCommonOutputFormatter(cmd *cobra.Command) commonOutputFormatter {
	return commonOutputFormatter{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputFormatter) SetCommandResult(result CommandResult) {
	c.commandOutput = result
}
