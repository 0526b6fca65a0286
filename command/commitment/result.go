package commitment

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/types"
)

type CommitmentResult struct {
	header *helper.Header

	Commitment types.Hash `json:"commitment"`
	HeaderHash types.Hash `json:"headerHash"`
}

func (r *CommitmentResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[BLOCK COMMITMENT]\n")
	buffer.WriteString(helper.FormatKV(append(r.header.KV(),
		fmt.Sprintf("Header hash|%s", r.HeaderHash),
		fmt.Sprintf("Commitment|%s", r.Commitment),
	)))
	buffer.WriteString("\n")

	return buffer.String()
}
