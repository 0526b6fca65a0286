package recoversigner

import (
	"fmt"

	"github.com/0xPolygon/polygon-zenith/command/helper"
	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/zenith"
)

const signatureFlag = "signature"

var params = &recoverParams{}

type recoverParams struct {
	header       helper.HeaderParams
	signatureRaw string
}

func (p *recoverParams) signature() (*zenith.Signature, error) {
	raw, err := hex.DecodeHex(p.signatureRaw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", signatureFlag, err)
	}

	return zenith.ParseSignature(raw)
}
