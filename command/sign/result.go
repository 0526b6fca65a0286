package sign

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/types"
)

type SignResult struct {
	Sequencer  types.Address  `json:"sequencer"`
	Commitment types.Hash     `json:"commitment"`
	V          uint8          `json:"v"`
	R          types.Hash     `json:"r"`
	S          types.Hash     `json:"s"`
	Signature  types.HexBytes `json:"signature"`
}

func (r *SignResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[SEQUENCER SIGNATURE]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Sequencer|%s", r.Sequencer),
		fmt.Sprintf("Commitment|%s", r.Commitment),
		fmt.Sprintf("V|%d", r.V),
		fmt.Sprintf("R|%s", r.R),
		fmt.Sprintf("S|%s", r.S),
		fmt.Sprintf("Signature|%s", hex.EncodeToHex(r.Signature)),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
