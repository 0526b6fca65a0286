package recoversigner

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/polygon-zenith/command/output"
	"github.com/0xPolygon/polygon-zenith/types"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

// GetCommand returns the recover command
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recovers the sequencer that signed a block header",
		Run:   runCommand,
	}

	params.header.SetFlags(cmd)

	cmd.Flags().StringVar(
		&params.signatureRaw,
		signatureFlag,
		"",
		"the hex encoded signature, r | s | v",
	)

	_ = cmd.MarkFlagRequired(signatureFlag)

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

	sig, err := params.signature()
	if err != nil {
		outputter.SetError(err)

		return
	}

	commitment := header.Commitment()

	signer := zenith.RecoverSigner(commitment, sig)
	if signer == types.ZeroAddress {
		outputter.SetError(errors.New("signature does not recover to a signer"))

		return
	}

	outputter.SetCommandResult(&RecoverResult{
		Commitment: commitment,
		Sequencer:  signer,
	})
}
