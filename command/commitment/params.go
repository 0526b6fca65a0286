package commitment

import (
	"github.com/0xPolygon/polygon-zenith/command/helper"
)

var params = &commitmentParams{}

type commitmentParams struct {
	header helper.HeaderParams
}
