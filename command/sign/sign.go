package sign

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/command/output"
	"github.com/0xPolygon/polygon-zenith/config"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

// GetCommand returns the sign command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "sign",
		Short: fmt.Sprintf("Signs a block header with the sequencer key read from %s",
			config.SequencerKeyEnv),
		Run: runCommand,
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

	if err := helper.LoadEnv(cmd); err != nil {
		outputter.SetError(err)

		return
	}

	key, err := config.SequencerKey()
	if err != nil {
		outputter.SetError(err)

		return
	}

	signer := zenith.NewSigner(key, header.HostChainID, header.Version)

	sig, err := signer.SignBlock(header.Header, header.BlockData)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&SignResult{
		Sequencer:  signer.Address(),
		Commitment: header.Commitment(),
		V:          sig.V,
		R:          sig.R,
		S:          sig.S,
		Signature:  sig.Bytes(),
	})
}
