package commitment

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command/output"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

// GetCommand returns the commitment command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commitment",
		Short: "Computes the commitment a sequencer signs for a block header and its block data",
		Run:   runCommand,
	}

	params.header.SetFlags(cmd)

	return cmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := output.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	header, err := params.header.Parse()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&CommitmentResult{
		header:     header,
		Commitment: header.Commitment(),
		HeaderHash: zenith.HeaderHash(header.Header),
	})
}
