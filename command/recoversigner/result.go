package recoversigner

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/types"
)

type RecoverResult struct {
	Commitment types.Hash    `json:"commitment"`
	Sequencer  types.Address `json:"sequencer"`
}

func (r *RecoverResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[RECOVERED SEQUENCER]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Commitment|%s", r.Commitment),
		fmt.Sprintf("Sequencer|%s", r.Sequencer),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
